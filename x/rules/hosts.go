package rules

import (
	"context"
	"net"
	"strings"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/reqctx"
)

// hostsRule matches the origin address of the request. With
// accept_x_forwarded_for_header enabled, an X-Forwarded-For entry that
// matches also counts, for deployments behind a load balancer.
type hostsRule struct {
	hosts               *Matcher
	acceptXForwardedFor bool
}

func NewHostsRule(value interface{}) (acl.Rule, error) {
	rule := &hostsRule{}

	switch value.(type) {
	case map[string]interface{}, map[interface{}]interface{}:
		m, err := toMap(value)
		if err != nil {
			return nil, err
		}
		raw, ok := m["hosts"]
		if !ok {
			return nil, core.NewErrorConfig("hosts requires a hosts list")
		}
		hosts, err := toStringSlice(raw)
		if err != nil {
			return nil, err
		}
		rule.hosts = NewMatcher(hosts)
		if rawAccept, ok := m["accept_x_forwarded_for_header"]; ok {
			if rule.acceptXForwardedFor, err = toBool(rawAccept); err != nil {
				return nil, err
			}
		}
	default:
		hosts, err := toStringSlice(value)
		if err != nil {
			return nil, err
		}
		rule.hosts = NewMatcher(hosts)
	}

	return rule, nil
}

func (r *hostsRule) Key() string { return "hosts" }

func (r *hostsRule) Match(ctx context.Context, rc *reqctx.RequestContext) (bool, error) {
	if r.hosts.Match(remoteHost(rc.RemoteAddr())) {
		return true, nil
	}

	if r.acceptXForwardedFor {
		for _, hop := range forwardedForChain(rc.Header(core.HeaderForwardedFor)) {
			if r.hosts.Match(hop) {
				return true, nil
			}
		}
	}

	return false, nil
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func forwardedForChain(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	hops := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			hops = append(hops, p)
		}
	}
	return hops
}
