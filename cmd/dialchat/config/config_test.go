package configcmder_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/ansi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/dialchat/cmd/dialchat/config"
)

// run executes the config command with args and returns its plain output.
func run(args ...string) (string, error) {
	cmd := configcmder.NewConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return ansi.Strip(out.String()), err
}

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dialchat-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// Create a local .dialchat dir so the manager picks it up
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".dialchat"), 0o755)).To(Succeed())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("sets a config value successfully", func() {
			out, err := run("set", "dial.deployment", "gpt-4o-mini")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("✓ Set dial.deployment = gpt-4o-mini"))

			data, err := os.ReadFile(filepath.Join(tmpDir, ".dialchat", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`deployment = "gpt-4o-mini"`))
		})

		It("rejects unknown keys", func() {
			_, err := run("set", "invalid_key", "value")
			Expect(err).To(MatchError(ContainSubstring("unknown config key")))
			Expect(err.Error()).To(ContainSubstring("dial.endpoint"))
		})

		It("requires exactly two arguments", func() {
			_, err := run("set", "dial.deployment")
			Expect(err).To(HaveOccurred())
		})

		It("rejects zero arguments", func() {
			_, err := run("set")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid bool values", func() {
			_, err := run("set", "chat.stream", "maybe")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := run("set", "chat.system_prompt", "Be brief.")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("get", "chat.system_prompt")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("chat.system_prompt  Be brief."))
		})

		It("reports an unset key", func() {
			out, err := run("get", "chat.system_prompt")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("<not set>"))
		})

		It("shows the default for a key missing from the file", func() {
			out, err := run("get", "dial.deployment")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("gpt-4o"))
		})

		It("rejects unknown keys", func() {
			_, err := run("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := run("get")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key when no config exists", func() {
			out, err := run("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring(`dial.endpoint      = "https://ai-proxy.lab.epam.com"`))
			Expect(out).To(ContainSubstring(`chat.stream        = "true"`))
			Expect(out).To(ContainSubstring("chat.system_prompt = <not set>"))
		})

		It("reflects values that were set", func() {
			_, err := run("set", "chat.markdown", "true")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Using config file:"))
			Expect(out).To(ContainSubstring(`chat.markdown      = "true"`))
		})

		It("rejects any arguments", func() {
			_, err := run("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
