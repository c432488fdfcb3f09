package searxup

import (
	"context"
	"fmt"
	"os"
)

const avahiServicePath = "/etc/avahi/services/searxng.service"

const avahiServiceTemplate = `<?xml version="1.0" standalone='no'?>
<!DOCTYPE service-group SYSTEM "avahi-service.dtd">
<service-group>
  <name replace-wildcards="yes">SearXNG on %h</name>
  <service>
    <type>_http._tcp</type>
    <port>{{.HTTPPort}}</port>
  </service>
  <service>
    <type>_https._tcp</type>
    <port>443</port>
  </service>
</service-group>
`

type avahiData struct {
	HTTPPort int
}

// AvahiServiceXML renders the mDNS service record: plaintext HTTP on the
// alternate port and HTTPS on the standard port, published under the
// machine hostname.
func AvahiServiceXML(httpPort int) ([]byte, error) {
	return renderTemplate("avahi-service", avahiServiceTemplate, avahiData{HTTPPort: httpPort})
}

// registerMDNS sets the machine hostname to the profile's label, writes
// the avahi service record and (re)starts the daemon. Root writes go
// through sudo since the installer runs unprivileged.
func registerMDNS(ctx context.Context, runner Runner, label string, httpPort int) error {
	xml, err := AvahiServiceXML(httpPort)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "searxng-avahi-*.service")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.Write(xml); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if _, err := runner.Capture(ctx, "sudo", "hostnamectl", "set-hostname", label); err != nil {
		return fmt.Errorf("set hostname: %w", err)
	}
	if _, err := runner.Capture(ctx, "sudo", "install", "-D", "-m", "644",
		tmpPath, avahiServicePath); err != nil {
		return fmt.Errorf("install avahi service record: %w", err)
	}
	if _, err := runner.Capture(ctx, "sudo", "systemctl", "enable", "--now", "avahi-daemon"); err != nil {
		return fmt.Errorf("enable avahi-daemon: %w", err)
	}
	if _, err := runner.Capture(ctx, "sudo", "systemctl", "restart", "avahi-daemon"); err != nil {
		return fmt.Errorf("restart avahi-daemon: %w", err)
	}
	return nil
}
