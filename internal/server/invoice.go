package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/shopstack/shopbill/internal/invoice/domain"
	"github.com/shopstack/shopbill/internal/providers/pdf"
)

// walkInCustomer is the client-side sentinel for a counter sale with no
// customer record.
const walkInCustomer = "walk-in"

type createInvoiceRequest struct {
	CustomerID     string          `json:"customer_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	InvoiceDate    *time.Time      `json:"invoice_date"`
	DueDate        *time.Time      `json:"due_date"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Notes          string          `json:"notes"`

	InitialPayment  decimal.Decimal `json:"initial_payment"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentDate     *time.Time      `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number"`
	PaymentNotes    string          `json:"payment_notes"`

	Items []invoicedomain.LineItem `json:"items" binding:"required"`
}

func parseCustomerID(raw string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.EqualFold(trimmed, walkInCustomer) {
		return nil, nil
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil || id == 0 {
		return nil, newValidationError("customer_id", "invalid_customer_id", "invalid customer id")
	}
	return &id, nil
}

func (s *Server) CreateInvoice(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID, err := parseCustomerID(req.CustomerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		ShopID:          shop.ID,
		CustomerID:      customerID,
		InvoiceNumber:   strings.TrimSpace(req.InvoiceNumber),
		InvoiceDate:     req.InvoiceDate,
		DueDate:         req.DueDate,
		TaxAmount:       req.TaxAmount,
		DiscountAmount:  req.DiscountAmount,
		Notes:           req.Notes,
		InitialPayment:  req.InitialPayment,
		PaymentMethod:   req.PaymentMethod,
		PaymentDate:     req.PaymentDate,
		ReferenceNumber: req.ReferenceNumber,
		PaymentNotes:    req.PaymentNotes,
		Items:           req.Items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req invoicedomain.ListInvoiceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ShopID = shop.ID
	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.invoiceSvc.Delete(c.Request.Context(), shop.ID, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListInvoiceItems(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.Items(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoicePayments(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.Payments(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AddInvoicePayment(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req invoicedomain.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ShopID = shop.ID
	req.InvoiceID = id
	resp, err := s.invoiceSvc.AddPayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) CheckInvoicePayment(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(c.Query("amount")))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	allowed, reason, err := s.invoiceSvc.CanAddPayment(c.Request.Context(), shop.ID, id, amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"allowed": allowed,
		"reason":  reason,
	}})
}

func (s *Server) GetInvoicePaymentSummary(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invoiceSvc.PaymentSummary(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateReturnInvoice(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req invoicedomain.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req.ShopID = shop.ID
	req.OriginalInvoiceID = id
	resp, err := s.invoiceSvc.CreateReturn(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListReturnInvoices(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	returns, err := s.invoiceSvc.ReturnInvoices(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	total, err := s.invoiceSvc.TotalReturns(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"returns":       returns,
		"total_returns": total,
	}})
}

func (s *Server) GetInvoiceNetAmount(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	net, err := s.invoiceSvc.NetAmount(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	total, err := s.invoiceSvc.TotalReturns(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"net_amount":    net,
		"total_returns": total,
	}})
}

func (s *Server) GetInvoicePDF(c *gin.Context) {
	shop, ok := currentShop(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items, err := s.invoiceSvc.Items(c.Request.Context(), shop.ID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc := buildInvoiceDocument(shopHeader{
		Name:    shop.ShopName,
		Address: shop.Address,
		Phone:   shop.Phone,
	}, inv, items)

	reader, err := s.pdf.RenderInvoice(c.Request.Context(), doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+inv.InvoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

type shopHeader struct {
	Name    string
	Address string
	Phone   string
}

func buildInvoiceDocument(header shopHeader, inv *invoicedomain.Invoice, items []invoicedomain.InvoiceItem) pdf.InvoiceDocument {
	customerName := inv.CustomerName
	if customerName == "" {
		customerName = "Walk-in customer"
	}

	dueDate := ""
	if inv.DueDate != nil {
		dueDate = inv.DueDate.Format(dateOnlyLayout)
	}

	lines := make([]pdf.InvoiceLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, pdf.InvoiceLine{
			Name:      item.ProductName,
			Quantity:  item.Quantity.String(),
			Unit:      item.Unit,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Amount:    item.TotalPrice.StringFixed(2),
		})
	}

	return pdf.InvoiceDocument{
		ShopName:      header.Name,
		ShopAddress:   header.Address,
		ShopPhone:     header.Phone,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate.Format(dateOnlyLayout),
		DueDate:       dueDate,
		Status:        string(inv.Status),
		CustomerName:  customerName,
		Items:         lines,
		Subtotal:      inv.Subtotal.StringFixed(2),
		Tax:           inv.TaxAmount.StringFixed(2),
		Discount:      inv.DiscountAmount.StringFixed(2),
		Total:         inv.TotalAmount.StringFixed(2),
		Paid:          inv.PaidAmount.StringFixed(2),
		Balance:       inv.BalanceAmount.StringFixed(2),
		Notes:         inv.Notes,
	}
}
