package httppresentation

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appCart "github.com/Zhima-Mochi/minishop-orders/internal/application/cart"
	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	appPayment "github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	appRefund "github.com/Zhima-Mochi/minishop-orders/internal/application/refund"
	domainCatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/identity"
	domainOrder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domainPayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

type Handler struct {
	cartService    *appCart.Service
	orderService   *appOrder.Service
	paymentService *appPayment.Service
	refundService  *appRefund.Service
	tokens         TokenParser
	log            observability.Logger
	tel            observability.Observability
}

const componentHTTPHandler = "http_server"

func NewHandler(
	cartSvc *appCart.Service,
	orderSvc *appOrder.Service,
	paymentSvc *appPayment.Service,
	refundSvc *appRefund.Service,
	tokens TokenParser,
	tel observability.Observability,
) *Handler {
	return &Handler{
		cartService:    cartSvc,
		orderService:   orderSvc,
		paymentService: paymentSvc,
		refundService:  refundSvc,
		tokens:         tokens,
		log:            tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tel:            tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.withObservability)

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.withAuth)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/summary", h.handleCartSummary)
			r.Post("/", h.handleCartPut)
			r.Post("/merge", h.handleCartMerge)
			r.Delete("/{productID}", h.handleCartRemove)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.handleCreateOrder)
			r.Get("/my-orders", h.handleMyOrders)
			r.Patch("/{orderID}/cancel", h.handleCancelOrder)
			r.With(h.requirePermission(identity.PermManageOrders)).
				Patch("/{orderID}/status", h.handleUpdateOrderStatus)
			r.With(h.requirePermission(identity.PermManageOrders)).
				Get("/deliveries", h.handleDeliveries)
		})

		r.Route("/payment", func(r chi.Router) {
			r.Post("/checkout", h.handleCheckout)
			r.With(h.requirePermission(identity.PermViewInvoices)).
				Get("/invoices", h.handleInvoices)
			r.With(h.requirePermission(identity.PermViewInvoices)).
				Get("/invoices/{orderID}/pdf", h.handleInvoicePDF)
			r.With(h.requirePermission(identity.PermViewRevenue)).
				Get("/revenue", h.handleRevenue)
			r.With(h.requirePermission(identity.PermIssueRefund)).
				Post("/refund", h.handleDirectRefund)
		})

		r.Route("/refunds", func(r chi.Router) {
			r.Post("/", h.handleRefundRequest)
			r.With(h.requirePermission(identity.PermResolveRefunds)).
				Get("/pending", h.handlePendingRefunds)
			r.With(h.requirePermission(identity.PermResolveRefunds)).
				Patch("/{orderID}/approve", h.handleApproveRefund)
			r.With(h.requirePermission(identity.PermResolveRefunds)).
				Patch("/{orderID}/reject", h.handleRejectRefund)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// --- Cart ---

type cartItemPayload struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type cartSummaryResponse struct {
	Items     []cartItemPayload `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  float64           `json:"subtotal"`
	Currency  string            `json:"currency"`
}

func toCartSummaryResponse(s *appCart.Summary) cartSummaryResponse {
	items := make([]cartItemPayload, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, cartItemPayload{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.PriceSnapshot,
		})
	}
	return cartSummaryResponse{
		Items:     items,
		ItemCount: s.ItemCount,
		Subtotal:  s.Subtotal,
		Currency:  s.Currency,
	}
}

func (h *Handler) handleCartSummary(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFrom(r.Context())
	summary, err := h.cartService.Get(r.Context(), ident.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartSummaryResponse(summary))
}

type cartPutRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) handleCartPut(w http.ResponseWriter, r *http.Request) {
	var req cartPutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	ident, _ := identityFrom(r.Context())
	summary, err := h.cartService.AddOrUpdate(r.Context(), ident.UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartSummaryResponse(summary))
}

func (h *Handler) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFrom(r.Context())
	summary, err := h.cartService.Remove(r.Context(), ident.UserID, chi.URLParam(r, "productID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartSummaryResponse(summary))
}

type guestCartItemPayload struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type cartMergeRequest struct {
	GuestCart []guestCartItemPayload `json:"guestCart"`
}

type cartMergeResponse struct {
	Cart cartSummaryResponse `json:"cart"`
}

func (h *Handler) handleCartMerge(w http.ResponseWriter, r *http.Request) {
	var req cartMergeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	guest := make([]appCart.GuestItem, 0, len(req.GuestCart))
	for _, it := range req.GuestCart {
		guest = append(guest, appCart.GuestItem{ProductID: it.Product, Quantity: it.Quantity})
	}

	ident, _ := identityFrom(r.Context())
	summary, err := h.cartService.MergeGuest(r.Context(), ident.UserID, guest)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cartMergeResponse{Cart: toCartSummaryResponse(summary)})
}

// --- Orders ---

type addressPayload struct {
	FullName     string `json:"fullName"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Country      string `json:"country"`
	PostalCode   string `json:"postalCode"`
}

func (a addressPayload) toDomain() domainOrder.Address {
	return domainOrder.Address{
		FullName:     a.FullName,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		Country:      a.Country,
		PostalCode:   a.PostalCode,
	}
}

func toAddressPayload(a domainOrder.Address) addressPayload {
	return addressPayload{
		FullName:     a.FullName,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		Country:      a.Country,
		PostalCode:   a.PostalCode,
	}
}

type orderLinePayload struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

type orderResponse struct {
	ID                  string             `json:"id"`
	Status              string             `json:"status"`
	Items               []orderLinePayload `json:"items"`
	Subtotal            float64            `json:"subtotal"`
	Tax                 float64            `json:"tax"`
	Shipping            float64            `json:"shipping"`
	Total               float64            `json:"total"`
	ShippingAddress     addressPayload     `json:"shippingAddress"`
	Notes               string             `json:"notes,omitempty"`
	InvoiceNumber       string             `json:"invoiceNumber,omitempty"`
	PaidAt              *time.Time         `json:"paidAt,omitempty"`
	RefundedAt          *time.Time         `json:"refundedAt,omitempty"`
	RefundAmount        float64            `json:"refundAmount,omitempty"`
	RefundReason        string             `json:"refundReason,omitempty"`
	RefundRequestStatus string             `json:"refundRequestStatus,omitempty"`
	RefundRequestAmount float64            `json:"refundRequestAmount,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

func toOrderResponse(o *domainOrder.Order) orderResponse {
	items := make([]orderLinePayload, 0, len(o.Items))
	for _, line := range o.Items {
		items = append(items, orderLinePayload{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		})
	}
	return orderResponse{
		ID:                  o.ID,
		Status:              string(o.Status),
		Items:               items,
		Subtotal:            o.Subtotal,
		Tax:                 o.Tax,
		Shipping:            o.Shipping,
		Total:               o.Total,
		ShippingAddress:     toAddressPayload(o.ShippingAddress),
		Notes:               o.Notes,
		InvoiceNumber:       o.InvoiceNumber,
		PaidAt:              o.PaidAt,
		RefundedAt:          o.RefundedAt,
		RefundAmount:        o.RefundAmount,
		RefundReason:        o.RefundReason,
		RefundRequestStatus: string(o.RefundRequestStatus),
		RefundRequestAmount: o.RefundRequestAmount,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}

func toOrderResponses(orders []*domainOrder.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

type createOrderRequest struct {
	ShippingAddress addressPayload `json:"shippingAddress"`
	Notes           string         `json:"notes"`
	ClearCart       bool           `json:"clearCart"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	ident, _ := identityFrom(r.Context())
	entity, err := h.orderService.Create(r.Context(), ident.UserID, appOrder.CreateInput{
		Address:   req.ShippingAddress.toDomain(),
		Notes:     req.Notes,
		Email:     ident.Email,
		ClearCart: req.ClearCart,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(entity))
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

func (h *Handler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFrom(r.Context())
	orders, err := h.orderService.MyOrders(r.Context(), ident.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderListResponse{Orders: toOrderResponses(orders)})
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFrom(r.Context())
	entity, err := h.orderService.Cancel(r.Context(), ident.UserID, chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(entity))
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateOrderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	status, err := domainOrder.ParseStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	entity, err := h.orderService.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(entity))
}

func (h *Handler) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.Deliveries(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// --- Payment ---

type checkoutRequest struct {
	OrderID     string  `json:"orderId"`
	CardNumber  string  `json:"cardNumber"`
	ExpiryMonth int     `json:"expiryMonth"`
	ExpiryYear  int     `json:"expiryYear"`
	CVV         string  `json:"cvv"`
	CardHolder  string  `json:"cardHolder"`
	Amount      float64 `json:"amount"`
}

type checkoutResponse struct {
	TransactionID    string  `json:"transactionId"`
	OrderID          string  `json:"orderId"`
	Amount           float64 `json:"amount"`
	InvoiceNumber    string  `json:"invoiceNumber"`
	InvoicePDFBase64 string  `json:"invoicePdfBase64,omitempty"`
	EmailSent        bool    `json:"emailSent"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	ident, _ := identityFrom(r.Context())
	result, err := h.paymentService.Checkout(r.Context(), ident, appPayment.CheckoutInput{
		OrderID: req.OrderID,
		Amount:  req.Amount,
		Card: domainPayment.Card{
			Number:      req.CardNumber,
			CVV:         req.CVV,
			Holder:      req.CardHolder,
			ExpiryMonth: req.ExpiryMonth,
			ExpiryYear:  req.ExpiryYear,
		},
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		TransactionID:    result.TransactionID,
		OrderID:          result.OrderID,
		Amount:           result.Amount,
		InvoiceNumber:    result.InvoiceNumber,
		InvoicePDFBase64: base64.StdEncoding.EncodeToString(result.InvoicePDF),
		EmailSent:        result.EmailSent,
	})
}

type invoiceSummaryPayload struct {
	OrderID       string     `json:"orderId"`
	InvoiceNumber string     `json:"invoiceNumber"`
	Total         float64    `json:"total"`
	PaidAt        *time.Time `json:"paidAt"`
}

func (h *Handler) handleInvoices(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	orders, err := h.paymentService.InvoicesByDateRange(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]invoiceSummaryPayload, 0, len(orders))
	for _, o := range orders {
		out = append(out, invoiceSummaryPayload{
			OrderID:       o.ID,
			InvoiceNumber: o.InvoiceNumber,
			Total:         o.Total,
			PaidAt:        o.PaidAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	ident, _ := identityFrom(r.Context())
	pdf, err := h.paymentService.InvoicePDF(r.Context(), chi.URLParam(r, "orderID"), ident)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

type revenueResponse struct {
	Revenue    float64 `json:"revenue"`
	Cost       float64 `json:"cost"`
	Profit     float64 `json:"profit"`
	Refunded   float64 `json:"refunded"`
	OrderCount int     `json:"orderCount"`
}

func (h *Handler) handleRevenue(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	report, err := h.paymentService.Revenue(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revenueResponse{
		Revenue:    report.Revenue,
		Cost:       report.Cost,
		Profit:     report.Profit,
		Refunded:   report.Refunded,
		OrderCount: report.OrderCount,
	})
}

type directRefundRequest struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

func (h *Handler) handleDirectRefund(w http.ResponseWriter, r *http.Request) {
	var req directRefundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	entity, err := h.paymentService.Refund(r.Context(), req.OrderID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(entity))
}

// --- Refund requests ---

type refundItemPayload struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type refundRequestRequest struct {
	OrderID string              `json:"orderId"`
	Items   []refundItemPayload `json:"items"`
	Reason  string              `json:"reason"`
}

func (h *Handler) handleRefundRequest(w http.ResponseWriter, r *http.Request) {
	var req refundRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	selections := make([]domainOrder.ItemSelection, 0, len(req.Items))
	for _, it := range req.Items {
		selections = append(selections, domainOrder.ItemSelection{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	ident, _ := identityFrom(r.Context())
	entity, err := h.refundService.Request(r.Context(), ident.UserID, req.OrderID, selections, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(entity))
}

func (h *Handler) handlePendingRefunds(w http.ResponseWriter, r *http.Request) {
	orders, err := h.refundService.Pending(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) handleApproveRefund(w http.ResponseWriter, r *http.Request) {
	entity, err := h.refundService.Approve(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(entity))
}

func (h *Handler) handleRejectRefund(w http.ResponseWriter, r *http.Request) {
	entity, err := h.refundService.Reject(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(entity))
}

// --- Plumbing ---

const dateLayout = "2006-01-02"

// dateRange parses ?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD with inclusive
// day bounds.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	startRaw := r.URL.Query().Get("startDate")
	endRaw := r.URL.Query().Get("endDate")
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, errors.New("startDate and endDate query parameters are required")
	}

	start, err := time.ParseInLocation(dateLayout, startRaw, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("startDate must be formatted as YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(dateLayout, endRaw, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("endDate must be formatted as YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("endDate must not precede startDate")
	}
	return start, end.Add(24 * time.Hour), nil
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	ProductID string `json:"productId,omitempty"`
	Available *int   `json:"available,omitempty"`
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string, available *int) {
	writeJSON(w, status, errorBody{Code: code, Message: message, Available: available})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *domainCatalog.InsufficientStockError
	if errors.As(err, &stockErr) {
		available := stockErr.Available
		writeJSON(w, http.StatusConflict, errorBody{
			Code:      "INSUFFICIENT_STOCK",
			Message:   err.Error(),
			ProductID: stockErr.ProductID,
			Available: &available,
		})
		return
	}
	var missingErr *domainCatalog.NotFoundError
	if errors.As(err, &missingErr) {
		writeJSON(w, http.StatusNotFound, errorBody{
			Code:      "PRODUCT_NOT_FOUND",
			Message:   err.Error(),
			ProductID: missingErr.ProductID,
		})
		return
	}

	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, appOrder.ErrEmptyCart):
		status, code = http.StatusBadRequest, "EMPTY_CART"
	case errors.Is(err, domainOrder.ErrInvalidAddress):
		status, code = http.StatusBadRequest, "INVALID_ADDRESS"
	case errors.Is(err, domainPayment.ErrInvalidCard):
		status, code = http.StatusBadRequest, "INVALID_CARD"
	case errors.Is(err, domainPayment.ErrAmountMismatch):
		status, code = http.StatusBadRequest, "AMOUNT_MISMATCH"
	case errors.Is(err, domainOrder.ErrNotCancellable):
		status, code = http.StatusBadRequest, "NOT_CANCELLABLE"
	case errors.Is(err, domainOrder.ErrNotDelivered):
		status, code = http.StatusBadRequest, "NOT_DELIVERED"
	case errors.Is(err, domainOrder.ErrNotPaid),
		errors.Is(err, domainOrder.ErrInvalidStatus),
		errors.Is(err, domainOrder.ErrNoRefundItems),
		errors.Is(err, domainOrder.ErrItemNotInOrder),
		errors.Is(err, domainCatalog.ErrInvalidQuantity):
		status, code = http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, domainCatalog.ErrNotFound):
		status, code = http.StatusNotFound, "PRODUCT_NOT_FOUND"
	case errors.Is(err, domainOrder.ErrNotFound):
		status, code = http.StatusNotFound, "ORDER_NOT_FOUND"
	case errors.Is(err, domainOrder.ErrNotOwner):
		status, code = http.StatusForbidden, "NOT_YOUR_ORDER"
	case errors.Is(err, domainCatalog.ErrInsufficientStock):
		status, code = http.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domainOrder.ErrAlreadyPaid):
		status, code = http.StatusConflict, "ALREADY_PAID"
	case errors.Is(err, domainOrder.ErrRefundConflict):
		status, code = http.StatusConflict, "REFUND_CONFLICT"
	}
	writeJSON(w, status, errorBody{Code: code, Message: err.Error()})
}
