//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=mock/client.go
package ldap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	goldap "github.com/go-ldap/ldap/v3"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/mizuame/searchgate/core"
	"github.com/mizuame/searchgate/x/settings"
)

var tracer = otel.Tracer("ldap")

// Client resolves identities against one configured LDAP server.
// A nil user with a nil error means "not authenticated" / "not found";
// errors are reserved for connectivity and protocol failures.
type Client interface {
	Authenticate(ctx context.Context, uid, password string) (*core.LdapUser, error)
	UserByID(ctx context.Context, uid string) (*core.LdapUser, error)
	GroupsOf(ctx context.Context, user *core.LdapUser) ([]string, error)
}

type client struct {
	conf settings.Ldap
}

// NewClient builds the raw unboundid-style client. Callers are expected to
// layer Wrap (caching) and NewLoggingDecorator on top.
func NewClient(conf settings.Ldap) Client {
	if conf.UserIDAttribute == "" {
		conf.UserIDAttribute = "uid"
	}
	if conf.UniqueMemberAttribute == "" {
		conf.UniqueMemberAttribute = "uniqueMember"
	}
	return &client{conf: conf}
}

func (c *client) dial() (*goldap.Conn, error) {
	scheme := "ldap"
	if c.conf.SSL {
		scheme = "ldaps"
	}
	url := fmt.Sprintf("%s://%s:%d", scheme, c.conf.Host, c.conf.Port)

	opts := []goldap.DialOpt{
		goldap.DialWithDialer(&net.Dialer{Timeout: c.conf.ConnectionTimeout()}),
	}
	if c.conf.SSL && c.conf.SSLTrustAllCerts {
		opts = append(opts, goldap.DialWithTLSConfig(&tls.Config{InsecureSkipVerify: true}))
	}

	conn, err := goldap.DialURL(url, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "ldap dial failed")
	}
	conn.SetTimeout(c.conf.RequestTimeout())

	if c.conf.BindDN != "" {
		if err := conn.Bind(c.conf.BindDN, c.conf.BindPassword); err != nil {
			conn.Close()
			return nil, errors.Wrap(err, "ldap service bind failed")
		}
	}
	return conn, nil
}

func (c *client) UserByID(ctx context.Context, uid string) (*core.LdapUser, error) {
	_, span := tracer.Start(ctx, "Ldap.Client.UserByID")
	defer span.End()

	conn, err := c.dial()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer conn.Close()

	return c.searchUser(conn, uid)
}

func (c *client) searchUser(conn *goldap.Conn, uid string) (*core.LdapUser, error) {
	req := goldap.NewSearchRequest(
		c.conf.SearchUserBaseDN,
		goldap.ScopeWholeSubtree, goldap.NeverDerefAliases, 1, int(c.conf.RequestTimeout().Seconds()), false,
		fmt.Sprintf("(%s=%s)", c.conf.UserIDAttribute, goldap.EscapeFilter(uid)),
		[]string{"dn"},
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		if goldap.IsErrorWithCode(err, goldap.LDAPResultNoSuchObject) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "ldap user search failed")
	}
	if len(res.Entries) == 0 {
		return nil, nil
	}

	return &core.LdapUser{UID: uid, DN: res.Entries[0].DN}, nil
}

func (c *client) Authenticate(ctx context.Context, uid, password string) (*core.LdapUser, error) {
	_, span := tracer.Start(ctx, "Ldap.Client.Authenticate")
	defer span.End()

	conn, err := c.dial()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer conn.Close()

	user, err := c.searchUser(conn, uid)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	// Bind as the found entry; an invalid-credentials result is a normal
	// no-match, not an error.
	if err := conn.Bind(user.DN, password); err != nil {
		if goldap.IsErrorWithCode(err, goldap.LDAPResultInvalidCredentials) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, errors.Wrap(err, "ldap user bind failed")
	}

	return user, nil
}

func (c *client) GroupsOf(ctx context.Context, user *core.LdapUser) ([]string, error) {
	_, span := tracer.Start(ctx, "Ldap.Client.GroupsOf")
	defer span.End()

	conn, err := c.dial()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer conn.Close()

	req := goldap.NewSearchRequest(
		c.conf.SearchGroupsBaseDN,
		goldap.ScopeWholeSubtree, goldap.NeverDerefAliases, 0, int(c.conf.RequestTimeout().Seconds()), false,
		fmt.Sprintf("(%s=%s)", c.conf.UniqueMemberAttribute, goldap.EscapeFilter(user.DN)),
		[]string{"cn"},
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		if goldap.IsErrorWithCode(err, goldap.LDAPResultNoSuchObject) {
			return []string{}, nil
		}
		span.RecordError(err)
		return nil, errors.Wrap(err, "ldap group search failed")
	}

	groups := make([]string, 0, len(res.Entries))
	for _, entry := range res.Entries {
		if cn := entry.GetAttributeValue("cn"); cn != "" {
			groups = append(groups, cn)
		}
	}
	return groups, nil
}
