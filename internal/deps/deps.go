package deps

import (
	"time"

	"freestream-server/internal/adapter"
	"freestream-server/internal/repos"

	pkgcache "freestream-server/pkg/cache"
	pkgcatalog "freestream-server/pkg/catalog"
	pkgsigner "freestream-server/pkg/signer"
)

// ServerDeps holds the dependencies required by handlers and server.
type ServerDeps struct {
	Repo      *repos.Repository
	Cache     pkgcache.Cache
	Signer    pkgsigner.Codec
	Catalog   *pkgcatalog.Client
	Transform *adapter.Transformer
	Name      string
	StartedAt time.Time
}
