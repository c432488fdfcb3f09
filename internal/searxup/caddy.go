package searxup

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// cspDirectives is the content-security policy shared by every variant.
// upgrade-insecure-requests is prepended separately because the dual
// variant must not carry it: it would force browsers to silently upcast
// the deliberately-plaintext alternate port to HTTPS.
var cspDirectives = []string{
	"default-src 'none'",
	"script-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"img-src * data:",
	"font-src 'self'",
	"connect-src 'self'",
	"form-action 'self'",
	"frame-ancestors 'self'",
	"base-uri 'self'",
}

const caddyfileTemplate = `# Generated by searxup. Regenerate instead of editing.
{{.SiteAddresses}} {

	encode zstd gzip

{{- if .ACMEEmail}}
	tls {{.ACMEEmail}}
{{- else}}
	tls internal
{{- end}}

	header {
		Content-Security-Policy "{{.CSP}}"
		Referrer-Policy "no-referrer"
		X-Content-Type-Options "nosniff"
		Permissions-Policy "accelerometer=(), camera=(), geolocation=(), microphone=(), payment=(), usb=()"
		-Server
	}

	@static path /static/*
	header @static Cache-Control "public, max-age=31536000, immutable"
	@notstatic not path /static/*
	header @notstatic Cache-Control "no-cache, no-store"
	header @notstatic Pragma "no-cache"

	reverse_proxy searxng:{{.AppPort}} {
		header_up X-Real-IP {remote_host}
	}
}
{{- if .ExtraPlainSite}}

http://{{.Host}}:{{.HTTPPort}} {

	encode zstd gzip

	header {
		X-Content-Type-Options "nosniff"
		-Server
	}

	reverse_proxy searxng:{{.AppPort}} {
		header_up X-Real-IP {remote_host}
	}
}
{{- end}}
`

type caddyData struct {
	SiteAddresses  string
	Host           string
	CSP            string
	ACMEEmail      string
	AppPort        int
	HTTPPort       int
	ExtraPlainSite bool
}

// buildCaddyfile renders the reverse-proxy configuration for the chosen
// variant. The dual variant gets one combined server block with both a
// plaintext listener on the alternate port and a TLS listener on the
// standard port; the other local variants get a separate plaintext site
// so API clients can skip TLS.
func buildCaddyfile(cfg Config, profile VariantProfile) ([]byte, error) {
	host := profile.EffectiveHost

	data := caddyData{
		Host:     host,
		AppPort:  cfg.AppPort,
		HTTPPort: cfg.HTTPPort,
	}

	csp := strings.Join(cspDirectives, "; ")
	switch profile.Variant {
	case VariantDualHTTPHTTPS:
		data.SiteAddresses = fmt.Sprintf("http://%s:%d, https://%s", host, cfg.HTTPPort, host)
		data.CSP = csp
	case VariantPublicDomain:
		data.SiteAddresses = host
		data.ACMEEmail = profile.ContactEmail
		data.CSP = "upgrade-insecure-requests; " + csp
	default:
		data.SiteAddresses = "https://" + host
		data.CSP = "upgrade-insecure-requests; " + csp
		data.ExtraPlainSite = true
	}

	return renderTemplate("Caddyfile", caddyfileTemplate, data)
}

func renderTemplate(name, text string, data any) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
