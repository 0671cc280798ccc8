package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequiresURI(t *testing.T) {
	_, err := New(context.Background())
	assert.EqualError(t, err, "mongodb: URI is empty")
}

func TestOptions(t *testing.T) {
	s := &Service{}
	WithURI("mongodb://localhost:27017")(s)
	WithDatabase("studio")(s)
	WithCollection("threads")(s)

	assert.Equal(t, "mongodb://localhost:27017", s.uri)
	assert.Equal(t, "studio", s.database)
	assert.Equal(t, "threads", s.collection)
}
