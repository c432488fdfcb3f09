package searxup

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
)

const Version = "0.3.0"

// Run dispatches the flag-driven subcommands. The no-argument wizard
// entry point lives in cmd/searxup; these subcommands are the
// non-interactive path for scripted and unattended installs.
func Run(args []string) error {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "install":
		return cmdInstall(cmdArgs)
	case "generate":
		return cmdGenerate(cmdArgs)
	case "status":
		return cmdStatus(cmdArgs)
	case "doctor":
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		return RunDoctor(cfg)
	case "version":
		fmt.Println("searxup " + Version)
		return nil
	case "help", "--help", "-h":
		usage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage() {
	fmt.Println(`searxup - take a fresh host to a running SearXNG deployment

Run without arguments for the interactive wizard.

Usage:
  searxup install  --variant ip-only|local-hostname|public-domain|dual-http-https
                   [--iface eth0] [--address 192.168.1.15] [--gateway 192.168.1.1]
                   [--netmask 255.255.255.0] [--dns 1.1.1.1,9.9.9.9]
                   [--hostname searxng] [--domain search.example.com] [--email ops@example.com]
                   [--apply-address] [--skip-packages] [--yes]
  searxup generate --variant <variant> [same flags]   # render artifacts only
  searxup status                                      # effective config + compose status
  searxup doctor                                      # preflight checks
  searxup version

Variants:
  ip-only          serve on the static IP with a self-signed certificate
  local-hostname   serve on <hostname>.local via mDNS, self-signed
  public-domain    serve on a public domain with Let's Encrypt
  dual-http-https  one combined site on <hostname>.local, HTTP :8888 and HTTPS :443`)
}

type installFlags struct {
	variant      string
	iface        string
	address      string
	gateway      string
	netmask      string
	dns          string
	hostname     string
	domain       string
	email        string
	applyAddress bool
	skipPackages bool
	yes          bool
}

func bindInstallFlags(fs *flag.FlagSet) *installFlags {
	f := &installFlags{}
	fs.StringVar(&f.variant, "variant", "", "deployment variant")
	fs.StringVar(&f.iface, "iface", "", "network interface (default: first usable)")
	fs.StringVar(&f.address, "address", "", "static IPv4 address override")
	fs.StringVar(&f.gateway, "gateway", "", "gateway override")
	fs.StringVar(&f.netmask, "netmask", "", "dotted netmask override")
	fs.StringVar(&f.dns, "dns", "", "comma-separated DNS servers")
	fs.StringVar(&f.hostname, "hostname", "", "hostname label for .local variants")
	fs.StringVar(&f.domain, "domain", "", "public domain")
	fs.StringVar(&f.email, "email", "", "contact email for certificate issuance")
	fs.BoolVar(&f.applyAddress, "apply-address", false, "re-address the interface to the static address")
	fs.BoolVar(&f.skipPackages, "skip-packages", false, "skip package installation")
	fs.BoolVar(&f.yes, "yes", false, "answer yes to all confirmations")
	return f
}

// resolveInputs turns flags into the frozen plan and profile.
func (f *installFlags) resolveInputs(cfg Config) (NetworkPlan, VariantProfile, error) {
	variant, err := ParseVariant(f.variant)
	if err != nil {
		return NetworkPlan{}, VariantProfile{}, err
	}

	iface := f.iface
	if iface == "" {
		names, err := ListInterfaces()
		if err != nil {
			return NetworkPlan{}, VariantProfile{}, err
		}
		iface = names[0]
	}
	discovery, err := Discover(iface)
	if err != nil {
		return NetworkPlan{}, VariantProfile{}, err
	}

	overrides := PlanOverrides{
		Address: f.address,
		Gateway: f.gateway,
		Netmask: f.netmask,
	}
	if f.dns != "" {
		for _, s := range strings.Split(f.dns, ",") {
			overrides.DNS = append(overrides.DNS, strings.TrimSpace(s))
		}
	}
	plan, err := BuildPlan(discovery, overrides, cfg.FallbackDNS())
	if err != nil {
		return NetworkPlan{}, VariantProfile{}, err
	}

	profile, err := ResolveProfile(variant, plan, VariantInput{
		HostnameLabel: f.hostname,
		Domain:        f.domain,
		ContactEmail:  f.email,
	})
	if err != nil {
		return NetworkPlan{}, VariantProfile{}, err
	}
	return plan, profile, nil
}

func cmdInstall(args []string) error {
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	f := bindInstallFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	plan, profile, err := f.resolveInputs(cfg)
	if err != nil {
		return err
	}

	log, err := OpenRunLog(cfg.ProjectDir)
	if err != nil {
		return err
	}
	defer log.Close()
	fmt.Printf("log: %s\n", log.Path())

	confirm := promptConfirm
	if f.yes {
		confirm = nil
	}
	driver := &Driver{
		Cfg:     cfg,
		Runner:  &ExecRunner{LogWriter: log.Writer()},
		Log:     log,
		Confirm: confirm,
	}

	err = driver.Deploy(context.Background(), plan, profile, DeployOptions{
		ApplyAddress: f.applyAddress,
		SkipPackages: f.skipPackages,
	})
	fmt.Printf("log: %s\n", log.Path())
	if err != nil {
		return err
	}
	fmt.Printf("searxng is up at https://%s\n", profile.EffectiveHost)
	return nil
}

func cmdGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	f := bindInstallFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	plan, profile, err := f.resolveInputs(cfg)
	if err != nil {
		return err
	}

	secret, err := LoadOrCreateSecret(cfg)
	if err != nil {
		return err
	}
	set, err := Generate(cfg, plan, profile, secret)
	if err != nil {
		return err
	}
	if err := WriteArtifacts(cfg, set, profile, secret); err != nil {
		return err
	}

	fmt.Printf("artifacts written to %s for %s (%s)\n",
		cfg.ProjectDir, profile.EffectiveHost, profile.Variant)
	fmt.Printf("next: searxup install --variant %s\n", profile.Variant)
	return nil
}

func cmdStatus(args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("project: %s\n", cfg.ProjectDir)
	if vars, err := ReadDotEnv(cfg.EnvPath()); err == nil {
		fmt.Printf("hostname: %s\n", vars["SEARXNG_HOSTNAME"])
		fmt.Printf("base url: %s\n", vars["SEARXNG_BASE_URL"])
	} else {
		fmt.Println("no env file yet; run searxup install")
		return nil
	}

	runner := &ExecRunner{}
	driver := &Driver{Cfg: cfg, Runner: runner}
	out, err := runner.Capture(context.Background(), "docker", driver.composeArgs("ps")...)
	if err != nil {
		fmt.Println("docker compose status unavailable:")
		fmt.Println(strings.TrimSpace(out))
		return nil
	}
	fmt.Println(out)
	return nil
}

// promptConfirm is the interactive confirmation used by the CLI path;
// the wizard collects the same consent in its network screen.
func promptConfirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
