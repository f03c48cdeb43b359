package memory

import (
	"testing"

	"github.com/RussGuo/Legata/internal/domain"
	"github.com/RussGuo/Legata/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) domain.Store { return NewStore() })
}
