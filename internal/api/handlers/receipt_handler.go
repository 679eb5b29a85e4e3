package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/davidchanit/receipt-scanner-backend/domain"
	"github.com/davidchanit/receipt-scanner-backend/internal/api/presenters"
	"github.com/davidchanit/receipt-scanner-backend/pkg/receipt"
)

type (
	ReceiptHandler interface {
		ExtractReceiptDetails(c *fiber.Ctx) error
		GetReceipts(c *fiber.Ctx) error
		GetReceiptDetails(c *fiber.Ctx) error
		DeleteReceipt(c *fiber.Ctx) error
		HealthCheck(c *fiber.Ctx) error
	}

	receiptHandler struct {
		receiptService receipt.ReceiptService
		validator      *validator.Validate
	}
)

func NewReceiptHandler(receiptService receipt.ReceiptService, validator *validator.Validate) ReceiptHandler {
	return &receiptHandler{
		receiptService: receiptService,
		validator:      validator,
	}
}

func (h *receiptHandler) ExtractReceiptDetails(c *fiber.Ctx) error {
	req := new(domain.ExtractReceiptRequest)

	file, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	req.Image = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedExtractReceipt, err)
	}

	res, err := h.receiptService.ExtractReceiptDetails(c.Context(), *req)
	if err != nil {
		if errors.Is(err, domain.ErrFileTooLarge) || errors.Is(err, domain.ErrInvalidImageFormat) {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedExtractReceipt, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedExtractReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessExtractReceipt)
}

func (h *receiptHandler) GetReceipts(c *fiber.Ctx) error {
	res, err := h.receiptService.GetReceipts(c.Context())
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetReceipts, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetReceipts)
}

func (h *receiptHandler) GetReceiptDetails(c *fiber.Ctx) error {
	id := c.Params("id")

	res, err := h.receiptService.GetReceiptByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetReceipt, err)
		}
		if errors.Is(err, domain.ErrParseUUID) {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetReceipt, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetReceipt, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetReceipt)
}

func (h *receiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := h.receiptService.DeleteReceipt(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedDeleteReceipt, err)
		}
		if errors.Is(err, domain.ErrParseUUID) {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedDeleteReceipt, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedDeleteReceipt, err)
	}

	return presenters.SuccessResponse(c, nil, fiber.StatusOK, domain.MessageSuccessDeleteReceipt)
}

func (h *receiptHandler) HealthCheck(c *fiber.Ctx) error {
	res := h.receiptService.HealthCheck(c.Context())

	code := fiber.StatusOK
	if res.Status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}

	return presenters.SuccessResponse(c, res, code, domain.MessageSuccessHealthCheck)
}
