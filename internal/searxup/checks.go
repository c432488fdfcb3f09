package searxup

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"
)

type CheckResult struct {
	Name string
	Err  error
	OK   bool
}

// RunChecks performs the preflight checks shown in the wizard and the
// doctor subcommand. A failed check is a warning, not a hard stop; the
// driver applies its own fatal prerequisite gate separately.
func RunChecks(cfg Config) []CheckResult {
	runner := &ExecRunner{}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	checks := []struct {
		name string
		fn   func() error
	}{
		{"running as non-root user", func() error {
			if os.Geteuid() == 0 {
				return fmt.Errorf("run searxup as a regular user; it escalates with sudo where needed")
			}
			return nil
		}},
		{"debian-family os", checkOSRelease},
		{"docker binary", func() error {
			_, err := exec.LookPath("docker")
			return err
		}},
		{"docker compose plugin", func() error {
			_, err := runner.Capture(ctx, "docker", "compose", "version")
			return err
		}},
		{"docker daemon reachable", func() error {
			_, err := runner.Capture(ctx, "docker", "info")
			return err
		}},
		{"registry connectivity", func() error {
			return checkConnectivity(ctx, "https://hub.docker.com")
		}},
		{"project dir writable", func() error {
			return writableCheck(cfg.ProjectDir)
		}},
		{"disk space >= 3GiB", func() error {
			return diskCheck(cfg.ProjectDir, 3)
		}},
		{"ports 80/443 free", func() error {
			out, err := runner.Capture(ctx, "ss", "-ltn")
			if err != nil {
				return err
			}
			if strings.Contains(out, ":80 ") || strings.Contains(out, ":443 ") {
				return fmt.Errorf("ports 80/443 already in use")
			}
			return nil
		}},
	}

	results := make([]CheckResult, 0, len(checks))
	for _, check := range checks {
		err := check.fn()
		results = append(results, CheckResult{Name: check.name, Err: err, OK: err == nil})
	}
	return results
}

// RunDoctor prints the preflight checks in CLI form.
func RunDoctor(cfg Config) error {
	fmt.Println("searxup doctor")
	fmt.Printf("runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	for _, r := range RunChecks(cfg) {
		if r.OK {
			fmt.Printf("[ OK ] %s\n", r.Name)
		} else {
			fmt.Printf("[WARN] %s: %v\n", r.Name, r.Err)
		}
	}
	return nil
}

func checkOSRelease() error {
	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return err
	}
	content := string(data)
	for _, id := range []string{"debian", "ubuntu", "raspbian"} {
		if strings.Contains(content, "ID="+id) || strings.Contains(content, "ID_LIKE="+id) {
			return nil
		}
	}
	return fmt.Errorf("unsupported distribution (want a debian family)")
}

func checkConnectivity(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func writableCheck(dir string) error {
	if err := ensureDir(dir, 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "searxup-write-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

func diskCheck(path string, minGiB uint64) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return err
	}
	free := (stat.Bavail * uint64(stat.Bsize)) / (1024 * 1024 * 1024)
	if free < minGiB {
		return fmt.Errorf("free space %dGiB < %dGiB", free, minGiB)
	}
	return nil
}
