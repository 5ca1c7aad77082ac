package handler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/veritrace/veritrace/internal/chain"
	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/http/response"
	"github.com/veritrace/veritrace/internal/observability"
	"github.com/veritrace/veritrace/internal/repository"
	"github.com/veritrace/veritrace/internal/service"
)

type ProductHandler struct {
	svc service.ProductWorkflow
}

func NewProductHandler(svc service.ProductWorkflow) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type mintRequest struct {
	Recipient   string  `json:"recipient"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Category    string  `json:"category"`
	Attributes  []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"attributes"`
}

// Mint accepts either a JSON body or a multipart form carrying an image file
// alongside the product fields.
func (h *ProductHandler) Mint(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeMintInput(w, r)
	if !ok {
		return
	}

	out, err := h.svc.Mint(r.Context(), input)
	if err != nil {
		writeMintError(w, r, err)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "product.mint",
		Actor:      out.Product.Owner,
		TargetType: "product",
		TargetID:   strconv.FormatUint(uint64(out.Product.ID), 10),
		Action:     "mint",
		Outcome:    "success",
		Reason:     "product_minted",
	}, "token_id", out.TokenID)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"message":         "NFT minted successfully",
		"transactionHash": out.TxHash,
		"tokenId":         out.TokenID,
		"product":         out.Product,
	})
}

func (h *ProductHandler) decodeMintInput(w http.ResponseWriter, r *http.Request) (service.MintProductInput, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.decodeMintMultipart(w, r)
	}

	var body mintRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return service.MintProductInput{}, false
	}
	input := service.MintProductInput{
		Recipient:   body.Recipient,
		Name:        body.Name,
		Description: body.Description,
		PriceInEth:  body.Price,
		Quantity:    body.Quantity,
		Category:    body.Category,
	}
	for _, attr := range body.Attributes {
		input.Attributes = append(input.Attributes, domain.ProductAttribute{Type: attr.Type, Value: attr.Value})
	}
	return input, true
}

func (h *ProductHandler) decodeMintMultipart(w http.ResponseWriter, r *http.Request) (service.MintProductInput, bool) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid multipart form", nil)
		return service.MintProductInput{}, false
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "price must be a number", nil)
		return service.MintProductInput{}, false
	}
	quantity := 1
	if raw := strings.TrimSpace(r.FormValue("quantity")); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "quantity must be an integer", nil)
			return service.MintProductInput{}, false
		}
	}

	input := service.MintProductInput{
		Recipient:   r.FormValue("recipient"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		PriceInEth:  price,
		Quantity:    quantity,
		Category:    r.FormValue("category"),
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		input.Image = file
		input.ImageSize = header.Size
	} else if err != http.ErrMissingFile {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid image upload", nil)
		return service.MintProductInput{}, false
	}
	return input, true
}

func writeMintError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrProductInvalidName),
		errors.Is(err, service.ErrProductInvalidDescription),
		errors.Is(err, service.ErrProductInvalidPrice),
		errors.Is(err, service.ErrProductInvalidQuantity),
		errors.Is(err, service.ErrInvalidWalletAddress),
		errors.Is(err, service.ErrFileTooBig),
		errors.Is(err, service.ErrInvalidFileType):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, service.ErrDuplicateProduct):
		response.Error(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		writeChainOrInternalError(w, r, err, "failed to mint product")
	}
}

func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	res, err := h.svc.ListPaged(r.Context(), pageReq)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list products", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"products": res.Items,
		"pagination": map[string]any{
			"page":        res.Page,
			"page_size":   res.PageSize,
			"total":       res.Total,
			"total_pages": res.TotalPages,
		},
	})
}

func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TokenID string `json:"tokenId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	product, err := h.svc.Search(r.Context(), body.TokenID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTokenID):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "no product found for this token", nil)
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to search product", nil)
		}
		return
	}
	response.JSON(w, r, http.StatusOK, product)
}

func (h *ProductHandler) History(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TokenID string `json:"tokenId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	records, err := h.svc.History(r.Context(), body.TokenID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "no product found for this token", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load history", nil)
		return
	}

	addresses := make([]string, 0, len(records))
	for _, rec := range records {
		addresses = append(addresses, rec.Address)
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"history": addresses,
		"records": records,
	})
}

func (h *ProductHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TokenID  string `json:"tokenId"`
		NewOwner string `json:"newOwner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	out, err := h.svc.Transfer(r.Context(), body.TokenID, body.NewOwner)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWalletAddress):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		case errors.Is(err, repository.ErrProductNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "no product found for this token", nil)
		default:
			writeChainOrInternalError(w, r, err, "failed to transfer product")
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "product.transfer",
		Actor:      out.Owner,
		TargetType: "product",
		TargetID:   strconv.FormatUint(uint64(out.Product.ID), 10),
		Action:     "transfer",
		Outcome:    "success",
		Reason:     "ownership_transferred",
	}, "token_id", out.Product.TokenID, "tx_hash", out.TxHash)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"message":         "NFT transferred successfully",
		"transactionHash": out.TxHash,
		"updatedOwner":    out.Owner,
		"updatedProduct":  out.Product,
	})
}

// writeChainOrInternalError distinguishes failures reported by the contracts
// from plain server errors so callers can tell a revert from an outage.
func writeChainOrInternalError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, chain.ErrConfirmTimeout):
		response.Error(w, r, http.StatusGatewayTimeout, "CHAIN_TIMEOUT", "transaction confirmation timed out", nil)
	case errors.Is(err, chain.ErrInsufficientFunds),
		errors.Is(err, chain.ErrTransferRejected),
		errors.Is(err, chain.ErrTxReverted),
		errors.Is(err, chain.ErrTokenIDNotFound):
		response.Error(w, r, http.StatusBadGateway, "CHAIN_ERROR", err.Error(), nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", fallback, nil)
	}
}
