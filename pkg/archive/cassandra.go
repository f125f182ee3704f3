package archive

import (
	"github.com/gocql/gocql"

	"github.com/becaslatam/becas-api/pkg/config"
)

// NewCassandra returns a connected Cassandra session for the scholarship archive.
func NewCassandra(cfg config.ArchiveConfig) (*gocql.Session, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.Quorum
	if cfg.Timeout > 0 {
		cluster.Timeout = cfg.Timeout
		cluster.ConnectTimeout = cfg.Timeout
	}

	return cluster.CreateSession()
}
