package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMongoConfig_PoolDefaults(t *testing.T) {
	cfg := MongoConfig{URI: "mongodb://localhost:27017", Database: "storefront"}.withDefaults()

	assert.Equal(t, uint64(defaultMaxPoolSize), cfg.MaxPoolSize)
	assert.Equal(t, uint64(defaultMinPoolSize), cfg.MinPoolSize)
}

func TestMongoConfig_ExplicitPoolSizesKept(t *testing.T) {
	cfg := MongoConfig{
		URI:         "mongodb://localhost:27017",
		Database:    "storefront",
		MaxPoolSize: 25,
		MinPoolSize: 5,
	}.withDefaults()

	assert.Equal(t, uint64(25), cfg.MaxPoolSize)
	assert.Equal(t, uint64(5), cfg.MinPoolSize)
}
