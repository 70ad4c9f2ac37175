package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Cupcake005/sku-app/internal/domain"
	"github.com/Cupcake005/sku-app/internal/usecase"
)

// maxUploadBytes caps catalog uploads
const maxUploadBytes = 10 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog    *usecase.CatalogService
	exportList *usecase.ExportListService
	scan       *usecase.ScanService
	now        func() time.Time
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog *usecase.CatalogService, exportList *usecase.ExportListService, scan *usecase.ScanService) *Handler {
	return &Handler{
		catalog:    catalog,
		exportList: exportList,
		scan:       scan,
		now:        time.Now,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "sku-app",
		"version": "1.0.0",
	})
}

// productRequest is the product form body. Price accepts a JSON number or
// free-form text such as "Rp 12.500".
type productRequest struct {
	SKU         string          `json:"sku"`
	ItemName    string          `json:"item_name" binding:"required"`
	Category    string          `json:"category"`
	BrandName   string          `json:"brand_name"`
	VariantName string          `json:"variant_name"`
	Price       json.RawMessage `json:"price"`
}

func (r *productRequest) toProduct() (*domain.Product, error) {
	price, err := parsePriceInput(r.Price)
	if err != nil {
		return nil, err
	}
	return &domain.Product{
		SKU:         r.SKU,
		ItemName:    r.ItemName,
		Category:    r.Category,
		BrandName:   r.BrandName,
		VariantName: r.VariantName,
		Price:       price,
	}, nil
}

func parsePriceInput(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, fmt.Errorf("%w: invalid price", domain.ErrInvalidRequest)
		}
		return usecase.ParsePrice(text), nil
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid price", domain.ErrInvalidRequest)
	}
	return d, nil
}

// bindProduct decodes a product form body
func bindProduct(c *gin.Context) (*domain.Product, bool) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return nil, false
	}
	product, err := req.toProduct()
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return product, true
}

// ListProducts handles GET /products?q=
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(c *gin.Context) {
	product, ok := bindProduct(c)
	if !ok {
		return
	}

	created, err := h.catalog.Create(c.Request.Context(), product)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateProduct handles PUT /products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	product, ok := bindProduct(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.catalog.Update(c.Request.Context(), id, product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "updated": true})
}

// DeleteProduct handles DELETE /products/:id
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetProductBySKU handles GET /products/sku/:sku
func (h *Handler) GetProductBySKU(c *gin.Context) {
	product, err := h.catalog.LookupBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// NextVariantSKU handles GET /products/sku/:sku/next-variant
func (h *Handler) NextVariantSKU(c *gin.Context) {
	base := c.Param("sku")
	sku, err := h.catalog.NextVariantSKU(c.Request.Context(), base)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"base": base, "sku": sku})
}

type scanRequest struct {
	Code      string `json:"code" binding:"required"`
	AddToList bool   `json:"add_to_list"`
}

// Scan handles POST /scan
func (h *Handler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	result, err := h.scan.Lookup(c.Request.Context(), req.Code, req.AddToList)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportCatalog handles GET /catalog/export
func (h *Handler) ExportCatalog(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.catalog.ExportCSV(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	h.sendCSV(c, "catalog", buf.Bytes())
}

// ImportCatalog handles POST /catalog/import?mode=upsert|replace. The file
// is read from the multipart field "file" or from the raw body.
func (h *Handler) ImportCatalog(c *gin.Context) {
	mode, err := domain.ParseImportMode(c.Query("mode"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: mode must be 'upsert' or 'replace'", domain.ErrInvalidRequest))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, fmt.Errorf("%w: file is required", domain.ErrInvalidRequest))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
			return
		}
		defer file.Close()
		body = file
	}

	report, err := h.catalog.Import(c.Request.Context(), body, mode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListExportEntries handles GET /export-list
func (h *Handler) ListExportEntries(c *gin.Context) {
	entries, err := h.exportList.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

type exportEntryRequest struct {
	productRequest
	Force bool `json:"force"`
}

// AddExportEntry handles POST /export-list
func (h *Handler) AddExportEntry(c *gin.Context) {
	var req exportEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	product, err := req.toProduct()
	if err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.exportList.Add(c.Request.Context(), *product, req.Force)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// RemoveExportEntry handles DELETE /export-list/entries/:entryId
func (h *Handler) RemoveExportEntry(c *gin.Context) {
	if err := h.exportList.Remove(c.Request.Context(), c.Param("entryId")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveExportEntriesBySKU handles DELETE /export-list/sku/:sku
func (h *Handler) RemoveExportEntriesBySKU(c *gin.Context) {
	removed, err := h.exportList.RemoveBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// ClearExportList handles DELETE /export-list
func (h *Handler) ClearExportList(c *gin.Context) {
	if err := h.exportList.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportExportList handles GET /export-list/export
func (h *Handler) ExportExportList(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.exportList.ExportCSV(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	h.sendCSV(c, "export-list", buf.Bytes())
}

// ExportScanLog handles GET /export-list/scan-log
func (h *Handler) ExportScanLog(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.exportList.ExportScanLog(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	h.sendCSV(c, "scan-log", buf.Bytes())
}

// sendCSV writes data as a download named <prefix>-YYYY-MM-DD.csv
func (h *Handler) sendCSV(c *gin.Context, prefix string, data []byte) {
	filename := fmt.Sprintf("%s-%s.csv", prefix, h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
