//go:build wireinject

package main

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/mizuame/searchgate/client"
	"github.com/mizuame/searchgate/x/acl"
	"github.com/mizuame/searchgate/x/audit"
	"github.com/mizuame/searchgate/x/cache"
	"github.com/mizuame/searchgate/x/rules"
	"github.com/mizuame/searchgate/x/settings"
)

func SetupAclService(root settings.Root, httpClient client.Client, store cache.Store, hasher *cache.Hasher, auditService audit.Service) (acl.Service, error) {
	wire.Build(rules.BuildDefinitions, rules.NewRegistry, acl.NewService)
	return nil, nil
}

func SetupAuditService(db *gorm.DB) audit.Service {
	wire.Build(newAuditService)
	return nil
}
