package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFromStore_RecordNotFound(t *testing.T) {
	err := FromStore(fmt.Errorf("find: %w", gorm.ErrRecordNotFound), ReasonItemNotFound, "item not found")

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, ReasonItemNotFound, e.Reason)
	assert.Equal(t, http.StatusNotFound, e.Status())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFromStore_PgUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_device_units_imei1"}
	err := FromStore(pgErr, ReasonDeviceNotFound, "")

	assert.True(t, IsKind(err, KindConflict))
	assert.True(t, IsReason(err, ReasonDuplicate))
	assert.Equal(t, "idx_device_units_imei1", Details(err)["pg_constraint"])
}

func TestFromStore_CheckViolation(t *testing.T) {
	for _, err := range []error{
		&pgconn.PgError{Code: "23514", ConstraintName: "chk_items_stock_qty"},
		fmt.Errorf("update: %w", gorm.ErrCheckConstraintViolated),
	} {
		got := FromStore(err, ReasonItemNotFound, "")
		assert.True(t, IsKind(got, KindValidation))
		assert.True(t, IsReason(got, ReasonOutOfRange))
	}
}

func TestFromStore_TypedErrorPassesThrough(t *testing.T) {
	orig := Conflict(ReasonItemAlreadySold, "sold")
	assert.Same(t, orig, FromStore(orig, ReasonItemNotFound, ""))
}

func TestFromStore_UnknownBecomesPersistence(t *testing.T) {
	err := FromStore(errors.New("connection reset"), ReasonItemNotFound, "")
	assert.True(t, IsKind(err, KindPersistence))
}

func TestEnvelope_HidesPersistenceCause(t *testing.T) {
	status, body := Envelope(Persistence(errors.New("pq: relation missing")), "REQ-0A1B2C3D")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, KindPersistence, body.Code)
	assert.Equal(t, "internal server error", body.Detail)
	assert.Equal(t, "REQ-0A1B2C3D", body.SupportCode)
}

func TestEnvelope_UntypedError(t *testing.T) {
	status, body := Envelope(errors.New("boom"), "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, KindPersistence, body.Code)
}

func TestEnvelope_StatusByKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation(ReasonCartEmpty, "cart is empty", nil), http.StatusBadRequest},
		{NewValidation(map[string]string{"qty": "min"}), http.StatusUnprocessableEntity},
		{NotFound(ReasonSaleNotFound, "sale not found"), http.StatusNotFound},
		{Conflict(ReasonImeiAlreadyInCart, "in cart"), http.StatusConflict},
		{InsufficientStock("only 2 left"), http.StatusConflict},
	}
	for _, tc := range cases {
		status, body := Envelope(tc.err, "")
		assert.Equal(t, tc.want, status, tc.err.Error())
		assert.NotEmpty(t, body.Detail)
	}
}
