package api

import "context"

// ClusterNameResolver looks up the display name of a Kafka cluster.
type ClusterNameResolver interface {
	ClusterName(ctx context.Context, clusterID int64) (string, bool)
}

// StaticClusterNames resolves cluster names from a fixed map.
type StaticClusterNames map[int64]string

func (m StaticClusterNames) ClusterName(_ context.Context, clusterID int64) (string, bool) {
	name, ok := m[clusterID]
	return name, ok
}
