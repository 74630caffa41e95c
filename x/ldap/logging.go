package ldap

import (
	"context"
	"log/slog"

	"github.com/mizuame/searchgate/core"
)

// loggingDecorator goes outside the cache decorator so cache hits are
// still visible in the logs.
type loggingDecorator struct {
	name       string
	underlying Client
}

func NewLoggingDecorator(name string, underlying Client) Client {
	return &loggingDecorator{name: name, underlying: underlying}
}

func (d *loggingDecorator) Authenticate(ctx context.Context, uid, password string) (*core.LdapUser, error) {
	user, err := d.underlying.Authenticate(ctx, uid, password)
	if err != nil {
		slog.DebugContext(ctx, "ldap authentication errored",
			slog.String("ldap", d.name),
			slog.String("uid", uid),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	slog.DebugContext(ctx, "ldap authentication",
		slog.String("ldap", d.name),
		slog.String("uid", uid),
		slog.Bool("authenticated", user != nil),
	)
	return user, nil
}

func (d *loggingDecorator) UserByID(ctx context.Context, uid string) (*core.LdapUser, error) {
	user, err := d.underlying.UserByID(ctx, uid)
	if err != nil {
		slog.DebugContext(ctx, "ldap user lookup errored",
			slog.String("ldap", d.name),
			slog.String("uid", uid),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	slog.DebugContext(ctx, "ldap user lookup",
		slog.String("ldap", d.name),
		slog.String("uid", uid),
		slog.Bool("found", user != nil),
	)
	return user, nil
}

func (d *loggingDecorator) GroupsOf(ctx context.Context, user *core.LdapUser) ([]string, error) {
	groups, err := d.underlying.GroupsOf(ctx, user)
	if err != nil {
		slog.DebugContext(ctx, "ldap group lookup errored",
			slog.String("ldap", d.name),
			slog.String("uid", user.UID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	slog.DebugContext(ctx, "ldap group lookup",
		slog.String("ldap", d.name),
		slog.String("uid", user.UID),
		slog.Int("groups", len(groups)),
	)
	return groups, nil
}
