package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/quillhq/quill/pkg/config"
)

var _ = Describe("Configer", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("LoadConfig", func() {
		It("returns defaults when no config file exists", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Client.APITarget).To(Equal("https://api.quill.dev"))
			Expect(cfg.Client.Assistant).To(Equal("writer"))
			Expect(cfg.Client.RequestTimeout).To(Equal(uint(300)))
			Expect(cfg.Chat.IncludeHistory).To(BeTrue())
		})

		It("loads values from an existing config file", func() {
			content := `version = 0

[client]
api_target = "http://localhost:8080"
assistant = "editor"
request_timeout = 30

[chat]
include_history = false
`
			Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)).To(Succeed())

			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Client.APITarget).To(Equal("http://localhost:8080"))
			Expect(cfg.Client.Assistant).To(Equal("editor"))
			Expect(cfg.Client.RequestTimeout).To(Equal(uint(30)))
			Expect(cfg.Chat.IncludeHistory).To(BeFalse())
		})

		It("fills unset fields with defaults", func() {
			content := `[client]
assistant = "editor"
`
			Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)).To(Succeed())

			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Client.Assistant).To(Equal("editor"))
			Expect(cfg.Client.APITarget).To(Equal("https://api.quill.dev"))
			Expect(cfg.Client.RequestTimeout).To(Equal(uint(300)))
		})

		It("keeps the include_history default when the file omits it", func() {
			content := `[client]
assistant = "editor"
`
			Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600)).To(Succeed())

			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Chat.IncludeHistory).To(BeTrue())
		})

		It("preserves an explicitly disabled include_history across saves", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("chat.include_history", "false")).To(Succeed())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Chat.IncludeHistory).To(BeFalse())
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips a config through the file", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			cfg := config.NewDefaultConfig()
			cfg.Client.Assistant = "researcher"
			Expect(cfger.SaveConfig(cfg)).To(Succeed())

			loaded, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Client.Assistant).To(Equal("researcher"))
		})

		It("writes the file with owner-only permissions", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SaveConfig(config.NewDefaultConfig())).To(Succeed())

			info, err := os.Stat(filepath.Join(dir, "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("rejects a nil config", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SaveConfig(nil)).To(MatchError(ContainSubstring("nil config")))
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("sets and gets string keys", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("client.api_target", "http://example.test")).To(Succeed())

			got, err := cfger.GetConfigValue("client.api_target")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("http://example.test"))
		})

		It("sets and gets uint keys", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("client.request_timeout", "60")).To(Succeed())

			got, err := cfger.GetConfigValue("client.request_timeout")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("60"))
		})

		It("sets and gets bool keys", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("chat.include_history", "false")).To(Succeed())

			got, err := cfger.GetConfigValue("chat.include_history")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("false"))
		})

		It("rejects unknown keys", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("nope.nope", "x")).To(MatchError(ContainSubstring("unknown config key")))

			_, err = cfger.GetConfigValue("nope.nope")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
		})

		It("rejects malformed values for typed keys", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("client.request_timeout", "soon")).NotTo(Succeed())
			Expect(cfger.SetConfigValue("chat.include_history", "sometimes")).NotTo(Succeed())
		})
	})

	Describe("ParseConfigTOML", func() {
		It("rejects unsupported versions", func() {
			_, err := config.ParseConfigTOML([]byte("version = 99\n"))
			Expect(err).To(MatchError(ContainSubstring("unsupported config version")))
		})

		It("rejects invalid TOML", func() {
			_, err := config.ParseConfigTOML([]byte("[client\n"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ValidConfigKeys", func() {
		It("lists every supported key exactly once", func() {
			keys := config.ValidConfigKeys()
			Expect(keys).To(ConsistOf(
				"client.api_target",
				"client.assistant",
				"client.request_timeout",
				"chat.include_history",
			))
		})

		It("validates keys", func() {
			Expect(config.IsValidConfigKey("client.assistant")).To(BeTrue())
			Expect(config.IsValidConfigKey("client.nope")).To(BeFalse())
		})
	})
})

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("returns viper with defaults when no config file exists", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).NotTo(BeNil())

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("client.api_target")).To(Equal(defaults.Client.APITarget))
		Expect(v.GetString("client.assistant")).To(Equal(defaults.Client.Assistant))
		Expect(v.GetUint("client.request_timeout")).To(Equal(defaults.Client.RequestTimeout))
		Expect(v.GetBool("chat.include_history")).To(Equal(defaults.Chat.IncludeHistory))
	})

	It("reads config file values over defaults", func() {
		data := `[client]
assistant = "editor"
request_timeout = 45
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("client.assistant")).To(Equal("editor"))
		Expect(v.GetUint("client.request_timeout")).To(Equal(uint(45)))
		// Unset fields should still get defaults
		defaults := config.NewDefaultConfig()
		Expect(v.GetString("client.api_target")).To(Equal(defaults.Client.APITarget))
	})

	It("respects environment variables with QUILL_ prefix", func() {
		GinkgoT().Setenv("QUILL_CLIENT_ASSISTANT", "researcher")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("client.assistant")).To(Equal("researcher"))
	})

	It("env vars take precedence over config file values", func() {
		data := `[client]
assistant = "editor"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		GinkgoT().Setenv("QUILL_CLIENT_ASSISTANT", "researcher")

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("client.assistant")).To(Equal("researcher"))
	})
})

var _ = Describe("BindFlags", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("binds cobra flags to viper keys via registry", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		fs := config.DefaultFlagSet()

		cmd := &cobra.Command{Use: "test"}
		var assistantName string
		config.AddStringFlag(cmd, fs, config.FlagAssistant, &assistantName)

		// Simulate flag being set by user
		err = cmd.Flags().Set("assistant", "editor")
		Expect(err).NotTo(HaveOccurred())

		config.BindRegisteredFlags(v, cmd, fs, []string{config.FlagAssistant})

		Expect(v.GetString("client.assistant")).To(Equal("editor"))
	})

	It("falls through to config when flag not set", func() {
		data := `[client]
assistant = "editor"
`
		err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())

		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		fs := config.DefaultFlagSet()

		cmd := &cobra.Command{Use: "test"}
		var assistantName string
		config.AddStringFlag(cmd, fs, config.FlagAssistant, &assistantName)

		// Do NOT set the flag -- should fall through to config file value
		config.BindRegisteredFlags(v, cmd, fs, []string{config.FlagAssistant})

		Expect(v.GetString("client.assistant")).To(Equal("editor"))
	})

	It("skips bindings for nonexistent registry keys", func() {
		v, err := config.InitViper(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		fs := config.FlagSet{}

		cmd := &cobra.Command{Use: "test"}

		// "nonexistent" is not in the FlagSet -- should be safely skipped
		config.BindRegisteredFlags(v, cmd, fs, []string{"nonexistent"})

		defaults := config.NewDefaultConfig()
		Expect(v.GetString("client.assistant")).To(Equal(defaults.Client.Assistant))
	})

	It("AddStringFlag pulls name, shorthand, and description from FlagSet", func() {
		fs := config.DefaultFlagSet()

		cmd := &cobra.Command{Use: "test"}
		var target string
		config.AddStringFlag(cmd, fs, config.FlagAPITarget, &target)

		f := cmd.Flags().Lookup("api-target")
		Expect(f).NotTo(BeNil())
		Expect(f.Shorthand).To(Equal("t"))
		Expect(f.Usage).To(Equal("Quill API server URL"))

		defaults := config.NewDefaultConfig()
		Expect(f.DefValue).To(Equal(defaults.Client.APITarget))
	})

	It("AddUintFlag works for request-timeout", func() {
		fs := config.DefaultFlagSet()

		cmd := &cobra.Command{Use: "test"}
		var timeout uint
		config.AddUintFlag(cmd, fs, config.FlagRequestTimeout, &timeout)

		f := cmd.Flags().Lookup("request-timeout")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("300"))
	})

	It("AddBoolFlag works for include-history", func() {
		fs := config.DefaultFlagSet()

		cmd := &cobra.Command{Use: "test"}
		var include bool
		config.AddBoolFlag(cmd, fs, config.FlagIncludeHistory, &include)

		f := cmd.Flags().Lookup("include-history")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal("true"))
	})
})
