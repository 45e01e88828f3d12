package directory

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/miekg/dns"
	"github.com/secretops/attrcrypt/interfaces"
)

// DNSDirectory resolves search scopes through DNS records published under a
// zone. Scope terms map to record names as follows:
//
//   - name:<node> selects the node directly, no SRV lookup
//   - <key>:<value> queries SRV _<key>-<value>._attrcrypt.<zone> whose
//     targets are the matching nodes' host names in the zone
//
// Each node's public key is published as a TXT record at
// <node>._attrcrypt.<zone>, containing the base64-encoded PEM.
//
// Wildcard patterns are not supported; DNS cannot enumerate names.
type DNSDirectory struct {
	zone     string
	resolver string
	client   *dns.Client
	log      *slog.Logger
}

// NewDNSDirectory creates a DNS-backed directory for a zone. The resolver is
// a host:port address; when empty, the systemd-resolved stub resolver is used.
func NewDNSDirectory(zone, resolver string, log *slog.Logger) *DNSDirectory {
	if resolver == "" {
		resolver = "127.0.0.53:53"
	}
	if log == nil {
		log = slog.Default()
	}
	return &DNSDirectory{
		zone:     strings.TrimSuffix(zone, "."),
		resolver: resolver,
		client:   new(dns.Client),
		log:      log,
	}
}

// Resolve looks up the nodes matched by any term of the scope expression
// and fetches their public keys.
func (d *DNSDirectory) Resolve(ctx context.Context, scope interfaces.SearchScope) ([]interfaces.NodeEntry, error) {
	terms, err := parseScope(scope)
	if err != nil {
		return nil, err
	}

	names := make(map[interfaces.NodeID]struct{})
	for _, term := range terms {
		if strings.Contains(term.pattern, "*") {
			return nil, fmt.Errorf("wildcard scope term %s:%s is not supported by the DNS directory", term.key, term.pattern)
		}

		if term.key == "name" {
			names[interfaces.NodeID(term.pattern)] = struct{}{}
			continue
		}

		nodes, err := d.querySRV(ctx, term)
		if err != nil {
			return nil, err
		}
		for _, node := range nodes {
			names[node] = struct{}{}
		}
	}

	entries := make([]interfaces.NodeEntry, 0, len(names))
	for node := range names {
		publicKey, err := d.queryPublicKey(ctx, node)
		if err != nil {
			return nil, err
		}
		entries = append(entries, interfaces.NodeEntry{Name: node, PublicKey: publicKey})
	}

	d.log.Debug("Resolved search scope via DNS",
		slog.String("scope", string(scope)),
		slog.Int("matches", len(entries)))
	return entries, nil
}

// querySRV returns the node names behind a scope term's SRV record.
func (d *DNSDirectory) querySRV(ctx context.Context, term scopeTerm) ([]interfaces.NodeID, error) {
	name := dns.Fqdn(fmt.Sprintf("_%s-%s._attrcrypt.%s", term.key, term.pattern, d.zone))

	msg := new(dns.Msg)
	msg.Id = dns.Id()
	msg.RecursionDesired = true
	msg.Question = []dns.Question{{Name: name, Qtype: dns.TypeSRV, Qclass: dns.ClassINET}}

	in, _, err := d.client.ExchangeContext(ctx, msg, d.resolver)
	if err != nil {
		return nil, fmt.Errorf("SRV query for %s failed: %w", name, err)
	}

	nodes := make([]interfaces.NodeID, 0, len(in.Answer))
	for _, answer := range in.Answer {
		srv, ok := answer.(*dns.SRV)
		if !ok {
			continue
		}
		nodes = append(nodes, d.nodeFromTarget(srv.Target))
	}
	return nodes, nil
}

// queryPublicKey fetches and decodes a node's TXT-published public key.
func (d *DNSDirectory) queryPublicKey(ctx context.Context, node interfaces.NodeID) ([]byte, error) {
	name := dns.Fqdn(fmt.Sprintf("%s._attrcrypt.%s", node, d.zone))

	msg := new(dns.Msg)
	msg.Id = dns.Id()
	msg.RecursionDesired = true
	msg.Question = []dns.Question{{Name: name, Qtype: dns.TypeTXT, Qclass: dns.ClassINET}}

	in, _, err := d.client.ExchangeContext(ctx, msg, d.resolver)
	if err != nil {
		return nil, fmt.Errorf("TXT query for %s failed: %w", name, err)
	}

	for _, answer := range in.Answer {
		txt, ok := answer.(*dns.TXT)
		if !ok {
			continue
		}
		// Long keys are split across strings; concatenate before decoding
		encoded := strings.Join(txt.Txt, "")
		publicKey, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("malformed public key record for node %s: %w", node, err)
		}
		return publicKey, nil
	}

	return nil, fmt.Errorf("no public key record for node %s", node)
}

// nodeFromTarget extracts the node name from an SRV target host name by
// stripping the zone suffix.
func (d *DNSDirectory) nodeFromTarget(target string) interfaces.NodeID {
	name := strings.TrimSuffix(target, ".")
	name = strings.TrimSuffix(name, "."+d.zone)
	return interfaces.NodeID(name)
}
