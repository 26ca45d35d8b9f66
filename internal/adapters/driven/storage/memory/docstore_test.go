package memory

import (
	"testing"

	"github.com/custodia-labs/procdocs/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

func TestDocumentStore_Contract(t *testing.T) {
	storetest.RunDocumentStoreTests(t, func(t *testing.T) driven.DocumentStore {
		return NewDocumentStore()
	})
}

func TestChatStore_Contract(t *testing.T) {
	storetest.RunChatStoreTests(t, func(t *testing.T) driven.ChatStore {
		return NewChatStore()
	})
}
