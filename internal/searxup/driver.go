package searxup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DeployOptions carries the per-run choices that are not part of the
// frozen plan or profile.
type DeployOptions struct {
	// ApplyAddress re-addresses the interface to the plan's static
	// address. The driver announces the new address and asks for
	// confirmation before applying: the change can sever the very
	// session driving it.
	ApplyAddress bool
	// SkipPackages leaves package installation to the operator.
	SkipPackages bool
}

// Driver sequences the external-tool work: prerequisites, packages,
// addressing, mDNS, artifact materialization, container start and
// verification. Stages run strictly in order; prerequisite and package
// failures abort the run, later failures are downgraded to warnings so
// the operator can intervene without losing a half-configured host.
type Driver struct {
	Cfg    Config
	Runner Runner
	Log    *RunLog
	// Confirm blocks for an operator yes/no. A nil Confirm answers
	// yes, for unattended runs that pre-approved everything.
	Confirm func(prompt string) bool
}

type Stage struct {
	Name  string
	Fatal bool
	Run   func(ctx context.Context) error
}

// Stages builds the ordered stage list for one deployment.
func (d *Driver) Stages(plan NetworkPlan, profile VariantProfile, opts DeployOptions) []Stage {
	return []Stage{
		{Name: "prerequisites", Fatal: true, Run: func(ctx context.Context) error {
			return d.checkPrerequisites(ctx)
		}},
		{Name: "packages", Fatal: true, Run: func(ctx context.Context) error {
			if opts.SkipPackages {
				d.Log.Infof("package installation skipped by request")
				return nil
			}
			return d.installPackages(ctx)
		}},
		{Name: "addressing", Run: func(ctx context.Context) error {
			if !opts.ApplyAddress {
				d.Log.Infof("keeping current address %s", plan.CurrentAddress)
				return nil
			}
			return d.applyAddress(ctx, plan)
		}},
		{Name: "mdns", Run: func(ctx context.Context) error {
			if !profile.Variant.UsesMDNS() {
				return nil
			}
			return registerMDNS(ctx, d.Runner, profile.HostnameLabel, d.Cfg.HTTPPort)
		}},
		{Name: "artifacts", Run: func(ctx context.Context) error {
			return d.materialize(plan, profile)
		}},
		{Name: "containers", Run: func(ctx context.Context) error {
			return d.startContainers(ctx)
		}},
		{Name: "verify", Run: func(ctx context.Context) error {
			return d.verify(ctx, profile)
		}},
	}
}

// Deploy runs all stages in order. The returned error, if any, names
// the fatal stage that stopped the run.
func (d *Driver) Deploy(ctx context.Context, plan NetworkPlan, profile VariantProfile, opts DeployOptions) error {
	for _, stage := range d.Stages(plan, profile, opts) {
		d.Log.Infof("stage %s", stage.Name)
		err := stage.Run(ctx)
		if err == nil {
			continue
		}
		if stage.Fatal {
			d.Log.Errorf("stage %s failed: %v", stage.Name, err)
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		d.Log.Warnf("stage %s failed, continuing: %v", stage.Name, err)
	}
	return nil
}

func (d *Driver) checkPrerequisites(ctx context.Context) error {
	if os.Geteuid() == 0 {
		return fmt.Errorf("refusing to run as root; the project directory belongs to the invoking user")
	}
	if err := checkOSRelease(); err != nil {
		return err
	}
	if err := checkConnectivity(ctx, "https://hub.docker.com"); err != nil {
		return fmt.Errorf("no registry connectivity: %w", err)
	}
	return nil
}

func (d *Driver) installPackages(ctx context.Context) error {
	if _, err := d.Runner.Capture(ctx, "sudo", "apt-get", "update"); err != nil {
		return err
	}
	args := append([]string{"env", "DEBIAN_FRONTEND=noninteractive",
		"apt-get", "install", "-y"}, d.Cfg.Packages...)
	if err := d.Runner.Stream(ctx, "sudo", args...); err != nil {
		return err
	}
	if _, err := d.Runner.Capture(ctx, "sudo", "systemctl", "enable", "--now", "docker"); err != nil {
		return err
	}
	return nil
}

// applyAddress moves the interface to the plan's static address. The
// new address is logged and announced before anything changes, and the
// bound address is re-read afterward instead of assuming success.
func (d *Driver) applyAddress(ctx context.Context, plan NetworkPlan) error {
	d.Log.Infof("re-addressing %s: %s -> %s (gateway %s, netmask %s)",
		plan.Interface, plan.CurrentAddress, plan.CIDR(), plan.Gateway, plan.Netmask)
	fmt.Printf("about to assign %s to %s; an SSH session on the old address will drop\n",
		plan.CIDR(), plan.Interface)

	if d.Confirm != nil && !d.Confirm(fmt.Sprintf("apply %s to %s?", plan.CIDR(), plan.Interface)) {
		d.Log.Infof("re-addressing declined by operator")
		return nil
	}

	if _, err := d.Runner.Capture(ctx, "sudo", "ip", "addr", "replace",
		plan.CIDR(), "dev", plan.Interface); err != nil {
		return err
	}
	if _, err := d.Runner.Capture(ctx, "sudo", "ip", "route", "replace",
		"default", "via", plan.Gateway.String(), "dev", plan.Interface); err != nil {
		return err
	}

	ip, _, ok, err := CurrentAddress(plan.Interface)
	if err != nil {
		return err
	}
	if !ok || !ip.Equal(plan.StaticAddress) {
		return fmt.Errorf("address %s not bound after apply (got %s)", plan.StaticAddress, ip)
	}
	d.Log.Infof("interface %s now bound to %s", plan.Interface, plan.CIDR())
	return nil
}

// materialize regenerates all artifacts from the frozen inputs and
// writes them into the project directory, snapshotting whatever a
// previous run left behind first. The secret survives re-runs.
func (d *Driver) materialize(plan NetworkPlan, profile VariantProfile) error {
	secret, err := LoadOrCreateSecret(d.Cfg)
	if err != nil {
		return err
	}
	set, err := Generate(d.Cfg, plan, profile, secret)
	if err != nil {
		return err
	}

	if archive, err := SnapshotArtifacts(d.Cfg); err != nil {
		d.Log.Warnf("artifact snapshot failed: %v", err)
	} else if archive != "" {
		d.Log.Infof("previous artifacts archived to %s", archive)
	}

	return WriteArtifacts(d.Cfg, set, profile, secret)
}

// LoadOrCreateSecret reuses the secret from an existing env file so a
// re-run does not invalidate live sessions; a fresh deployment mints a
// new one.
func LoadOrCreateSecret(cfg Config) (string, error) {
	if vars, err := ReadDotEnv(cfg.EnvPath()); err == nil {
		if existing := vars["SEARXNG_SECRET"]; ValidSecret(existing) {
			return existing, nil
		}
	}
	return NewSecret()
}

// WriteArtifacts lays the artifact set out in the project directory. A
// pre-existing env file is updated in place so operator comments and
// unselected optional keys survive; everything else is rendered fresh.
func WriteArtifacts(cfg Config, set ArtifactSet, profile VariantProfile, secret string) error {
	if err := ensureDir(cfg.ProjectDir, 0o750); err != nil {
		return err
	}
	if err := ensureDir(filepath.Dir(cfg.SettingsPath()), 0o750); err != nil {
		return err
	}

	if fileExists(cfg.EnvPath()) {
		if err := UpdateDotEnv(cfg.EnvPath(), envValues(cfg, profile, secret)); err != nil {
			return err
		}
	} else if err := os.WriteFile(cfg.EnvPath(), set.EnvFile, 0o640); err != nil {
		return err
	}

	if err := os.WriteFile(cfg.SettingsPath(), set.AppSettings, 0o640); err != nil {
		return err
	}
	if err := os.WriteFile(cfg.CaddyPath(), set.Caddyfile, 0o640); err != nil {
		return err
	}
	return os.WriteFile(cfg.ComposePath(), set.Compose, 0o640)
}

func (d *Driver) composeArgs(extra ...string) []string {
	args := []string{
		"compose",
		"-f", d.Cfg.ComposePath(),
		"--env-file", d.Cfg.EnvPath(),
		"-p", "searxng",
	}
	return append(args, extra...)
}

func (d *Driver) startContainers(ctx context.Context) error {
	if err := d.Runner.Stream(ctx, "docker", d.composeArgs("pull")...); err != nil {
		return err
	}
	return d.Runner.Stream(ctx, "docker", d.composeArgs("up", "-d", "--remove-orphans")...)
}

// expectedServices is the minimum number of running services for a
// healthy deployment: proxy, cache, application.
const expectedServices = 3

var logErrorMarkers = []string{"ERROR", "Traceback", "panic:", "exited with code"}

func (d *Driver) verify(ctx context.Context, profile VariantProfile) error {
	out, err := d.Runner.Capture(ctx, "docker", d.composeArgs("ps", "--format", "json")...)
	if err != nil {
		return err
	}
	running := countRunning(out)
	if running < expectedServices {
		return fmt.Errorf("%d of %d services running", running, expectedServices)
	}

	if err := d.probeEndpoint(ctx, profile); err != nil {
		return err
	}

	tail, err := d.Runner.Capture(ctx, "docker", d.composeArgs("logs", "--tail", "50")...)
	if err != nil {
		return err
	}
	for _, marker := range logErrorMarkers {
		if strings.Contains(tail, marker) {
			return fmt.Errorf("log tail contains %q; inspect docker compose logs", marker)
		}
	}

	d.Log.Infof("verification passed: %d services running", running)
	return nil
}

// probeEndpoint hits the plaintext ingress on localhost. The public
// variant has no alternate port, so its probe goes to port 80 where the
// proxy answers with a redirect; any non-5xx/4xx answer counts.
func (d *Driver) probeEndpoint(ctx context.Context, profile VariantProfile) error {
	url := fmt.Sprintf("http://127.0.0.1:%d/", d.Cfg.HTTPPort)
	if !profile.Variant.NeedsPlaintextPort() {
		url = "http://127.0.0.1/"
	}

	client := &http.Client{
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", url, err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("probe %s: status %d", url, resp.StatusCode)
	}
	return nil
}

// countRunning parses docker compose ps JSON output, which is a JSON
// array on older releases and one object per line on newer ones.
func countRunning(out string) int {
	type psEntry struct {
		State string `json:"State"`
	}

	var entries []psEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var e psEntry
			if json.Unmarshal([]byte(line), &e) == nil {
				entries = append(entries, e)
			}
		}
	}

	running := 0
	for _, e := range entries {
		if strings.EqualFold(e.State, "running") {
			running++
		}
	}
	return running
}
