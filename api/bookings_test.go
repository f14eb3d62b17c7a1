package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Book(ctx context.Context, caller domain.Identity, slotID int64, paidCents int64) (*domain.Booking, error) {
	args := m.Called(ctx, caller, slotID, paidCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelByGuest(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelByHost(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmCheckIn(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) RefundNoShow(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ReleasePayout(ctx context.Context, caller domain.Identity, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) FinalizePayoutIfIdle(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) SettleDue(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func testContext(t *testing.T, callerID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(callerKey, domain.Identity(callerID))
	return c, w
}

func sampleBooking(status domain.BookingStatus, amountCents int64) *domain.Booking {
	return &domain.Booking{
		ID:          1,
		SlotID:      1,
		Host:        "host-1",
		Guest:       "guest-1",
		AmountCents: amountCents,
		Status:      status,
		CreatedAt:   time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "guest-1")
	body, _ := json.Marshal(createBookingRequest{SlotID: 1, PaidCents: 500})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	b := sampleBooking(domain.BookingStatusBooked, 500)
	mockService.On("Book", c.Request.Context(), domain.Identity("guest-1"), int64(1), int64(500)).Return(b, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusBooked), response.Status)
	assert.Equal(t, int64(500), response.AmountCents)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_slotTaken(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "guest-2")
	body, _ := json.Marshal(createBookingRequest{SlotID: 1, PaidCents: 500})
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("Book", c.Request.Context(), domain.Identity("guest-2"), int64(1), int64(500)).Return(nil, domain.ErrAlreadyBooked)

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancelByGuest(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "guest-1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/1/guest-cancel", nil)

	b := sampleBooking(domain.BookingStatusGuestCancelled, 0)
	mockService.On("CancelByGuest", c.Request.Context(), domain.Identity("guest-1"), int64(1)).Return(b, nil)

	handler.cancelByGuest(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusGuestCancelled), response.Status)
	assert.Equal(t, int64(0), response.AmountCents)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancelByHost_wrongCaller(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "guest-1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/1/host-cancel", nil)

	mockService.On("CancelByHost", c.Request.Context(), domain.Identity("guest-1"), int64(1)).Return(nil, domain.ErrNotHost)

	handler.cancelByHost(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_confirmCheckIn(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "host-1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/1/check-in", nil)

	b := sampleBooking(domain.BookingStatusBooked, 500)
	b.CheckedIn = true
	mockService.On("ConfirmCheckIn", c.Request.Context(), domain.Identity("host-1"), int64(1)).Return(b, nil)

	handler.confirmCheckIn(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response.CheckedIn)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_refundNoShow(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "anyone")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/1/no-show-refund", nil)

	b := sampleBooking(domain.BookingStatusRefundedNoShow, 0)
	mockService.On("RefundNoShow", c.Request.Context(), int64(1)).Return(b, nil)

	handler.refundNoShow(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusRefundedNoShow), response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_releasePayout_tooEarly(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "host-1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/1/payout", nil)

	mockService.On("ReleasePayout", c.Request.Context(), domain.Identity("host-1"), int64(1)).Return(nil, domain.ErrTooEarly)

	handler.releasePayout(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_finalizePayout(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "anyone")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/1/finalize", nil)

	b := sampleBooking(domain.BookingStatusCompletedPaid, 0)
	b.CheckedIn = true
	mockService.On("FinalizePayoutIfIdle", c.Request.Context(), int64(1)).Return(b, nil)

	handler.finalizePayout(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusCompletedPaid), response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_invalidID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "guest-1")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	c.Request = httptest.NewRequest("GET", "/bookings/abc", nil)

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetByID")
}

func TestBookingHandler_settlementConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := testContext(t, "guest-1")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("POST", "/bookings/1/guest-cancel", nil)

	mockService.On("CancelByGuest", c.Request.Context(), domain.Identity("guest-1"), int64(1)).Return(nil, domain.ErrReentrancy)

	handler.cancelByGuest(c)

	assert.Equal(t, http.StatusLocked, w.Code)
	mockService.AssertExpectations(t)
}
