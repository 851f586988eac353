package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/identity"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

func TestRenderProducesPDF(t *testing.T) {
	entity, err := order.New("order-abc123", "u1", []order.Line{
		{ProductID: "p1", Name: "Wireless Mouse", Quantity: 2, UnitPrice: 25.00, LineTotal: 50.00},
	}, 0, 0, order.Address{
		FullName:     "Jane Doe",
		AddressLine1: "1 Main Street",
		City:         "Springfield",
		Country:      "US",
		PostalCode:   "12345",
	}, "")
	require.NoError(t, err)
	require.NoError(t, entity.MarkPaid(time.Now().UTC()))

	out, err := NewInvoiceRenderer("USD").Render(entity, identity.Identity{
		UserID: "u1",
		Name:   "Jane Doe",
		Email:  "jane@example.com",
		Role:   identity.RoleCustomer,
	})

	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}
