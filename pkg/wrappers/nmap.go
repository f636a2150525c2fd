package wrappers

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/sysexec"
)

// riskyPorts are reported as high severity when open.
var riskyPorts = map[string]bool{"22": true, "23": true, "3389": true}

// PortScanSource runs a fast nmap scan against Target and yields its open ports.
type PortScanSource struct {
	Runner sysexec.Runner
	Target string
	// Ports overrides nmap's fast scan (-F) with an explicit list, e.g. "1-1024".
	Ports string
}

func (n *PortScanSource) Name() string {
	return "nmap"
}

// Collect returns {addr, port, protocol, service} records for open ports.
func (n *PortScanSource) Collect(ctx context.Context) ([]engine.Record, error) {
	if _, err := n.Runner.LookPath("nmap"); err != nil {
		return []engine.Record{}, sysexec.Missing("port scanner (nmap)", err)
	}

	target := n.Target
	if target == "" {
		target = "127.0.0.1"
	}
	args := []string{"-F", target, "-oX", "-"}
	if n.Ports != "" {
		args = []string{"-p", n.Ports, target, "-oX", "-"}
	}

	out, err := n.Runner.Output(ctx, "nmap", args...)
	if err != nil {
		return []engine.Record{}, sysexec.Unavailable(n.Name(), err)
	}
	records, err := ParseNmapXML(out, n.Name())
	if err != nil {
		return []engine.Record{}, sysexec.Unavailable(n.Name(), err)
	}
	return records, nil
}

type nmapRun struct {
	Hosts []nmapHost `xml:"host"`
}

type nmapHost struct {
	Addresses []nmapAddress `xml:"address"`
	Ports     []nmapPort    `xml:"ports>port"`
}

type nmapAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
}

type nmapPort struct {
	PortID   string `xml:"portid,attr"`
	Protocol string `xml:"protocol,attr"`
	State    struct {
		State string `xml:"state,attr"`
	} `xml:"state"`
	Service struct {
		Name string `xml:"name,attr"`
	} `xml:"service"`
}

// ParseNmapXML reads nmap -oX output and keeps only open ports.
func ParseNmapXML(data []byte, source string) ([]engine.Record, error) {
	var run nmapRun
	if err := xml.Unmarshal(data, &run); err != nil {
		return nil, err
	}

	records := []engine.Record{}
	for _, host := range run.Hosts {
		var ip string
		for _, addr := range host.Addresses {
			if addr.AddrType == "ipv4" {
				ip = addr.Addr
				break
			}
		}
		if ip == "" && len(host.Addresses) > 0 {
			ip = host.Addresses[0].Addr
		}

		for _, port := range host.Ports {
			if port.State.State != "open" {
				continue
			}
			records = append(records, engine.NewRecord(source,
				"addr", ip,
				"port", port.PortID,
				"protocol", port.Protocol,
				"service", port.Service.Name,
			))
		}
	}
	return records, nil
}

// OpenPortFindings turns open-port records into findings. Remote-login
// ports are high severity, everything else medium.
func OpenPortFindings(records []engine.Record, category string) []engine.Finding {
	findings := make([]engine.Finding, 0, len(records))
	for _, r := range records {
		sev := engine.SeverityMedium
		if riskyPorts[r.Get("port")] {
			sev = engine.SeverityHigh
		}
		findings = append(findings, engine.Finding{
			Record:   r,
			Subject:  fmt.Sprintf("%s %s/%s", r.GetOr("addr", "unknown"), r.Get("port"), r.Get("protocol")),
			Category: category,
			Reason:   fmt.Sprintf("Port is open (Service: %s)", r.GetOr("service", "unknown")),
			Severity: sev,
			Detail:   "Verify the port needs to be exposed; restrict it with firewall rules otherwise.",
		})
	}
	return findings
}
