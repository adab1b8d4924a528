package api

import (
	"errors"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

// PackHandlers contains HTTP handlers for certified packs and manifest submissions
type PackHandlers struct {
	repository domain.PackRepository
	assets     domain.AssetStore
	certifier  domain.ManifestCertifier
}

// NewPackHandlers creates a new instance of pack handlers
func NewPackHandlers(repository domain.PackRepository, assets domain.AssetStore, certifier domain.ManifestCertifier) *PackHandlers {
	return &PackHandlers{
		repository: repository,
		assets:     assets,
		certifier:  certifier,
	}
}

// PackListResponse represents the response for listing packs
// @Description Summaries of every certified pack in manifest order
type PackListResponse struct {
	Packs []domain.PackSummary `json:"packs"`
	Count int                  `json:"count" example:"2"`
}

// ManifestResponse represents the packs read from a submitted manifest
// @Description Packs of a submitted manifest in source order
type ManifestResponse struct {
	Packs []domain.StickerPack `json:"packs"`
	Count int                  `json:"count" example:"1"`
}

// ListPacksHandler handles GET /v1/packs requests
// @Summary      List certified packs
// @Description  Returns a summary of every certified sticker pack in manifest order
// @Tags         Packs
// @Produce      json
// @Success      200 {object} SuccessResponse{data=PackListResponse} "Successfully retrieved packs"
// @Failure      503 {object} ErrorResponse "Catalog has not been loaded"
// @Router       /v1/packs [get]
func (h *PackHandlers) ListPacksHandler(c *fiber.Ctx) error {
	packs, err := h.repository.GetAllPacks(c.Context())
	if err != nil {
		return sendError(c, toAppError(err).WithContext(c.Context(), "list_packs"))
	}

	summaries := make([]domain.PackSummary, len(packs))
	for i := range packs {
		summaries[i] = packs[i].Summary()
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data: PackListResponse{
			Packs: summaries,
			Count: len(summaries),
		},
	})
}

// GetPackHandler handles GET /v1/packs/:id requests
// @Summary      Get a certified pack
// @Description  Returns the full descriptor of a certified pack, sticker sizes included
// @Tags         Packs
// @Produce      json
// @Param        id path string true "Pack identifier"
// @Success      200 {object} SuccessResponse{data=object{pack=domain.StickerPack}} "Successfully retrieved pack"
// @Failure      404 {object} ErrorResponse "Pack not found"
// @Failure      503 {object} ErrorResponse "Catalog has not been loaded"
// @Router       /v1/packs/{id} [get]
func (h *PackHandlers) GetPackHandler(c *fiber.Ctx) error {
	identifier := strings.TrimSpace(c.Params("id"))

	pack, err := h.repository.GetPackByID(c.Context(), identifier)
	if err != nil {
		return sendError(c, toAppError(err).WithContext(c.Context(), "get_pack"))
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data:   map[string]any{"pack": pack},
	})
}

// GetAssetHandler handles GET /v1/packs/:id/assets/:file requests
// @Summary      Download a pack asset
// @Description  Serves the tray image or a sticker image of a certified pack
// @Tags         Packs
// @Produce      image/webp
// @Produce      image/png
// @Param        id path string true "Pack identifier"
// @Param        file path string true "Tray or sticker file name"
// @Success      200 {file} binary "Asset bytes"
// @Failure      404 {object} ErrorResponse "Pack or asset not found"
// @Failure      409 {object} ErrorResponse "Asset changed since the pack was certified"
// @Failure      500 {object} ErrorResponse "Asset could not be read"
// @Router       /v1/packs/{id}/assets/{file} [get]
func (h *PackHandlers) GetAssetHandler(c *fiber.Ctx) error {
	ctx := c.Context()
	identifier := c.Params("id")
	fileName := c.Params("file")

	pack, err := h.repository.GetPackByID(ctx, identifier)
	if err != nil {
		return sendError(c, toAppError(err).WithContext(ctx, "get_asset"))
	}

	if !packReferences(pack, fileName) {
		return sendError(c, domain.NewAppError(
			domain.ErrAssetUnavailable,
			"Asset is not part of the sticker pack",
			fiber.StatusNotFound,
			FailureDetails{PackIdentifier: identifier, FileName: fileName},
		).WithContext(ctx, "get_asset"))
	}

	data, err := h.assets.Fetch(ctx, identifier, fileName)
	if err != nil {
		if errors.Is(err, domain.ErrAssetNotFound) {
			return sendError(c, domain.NewAppErrorWithCause(
				domain.ErrAssetUnavailable,
				"Asset not found",
				fiber.StatusNotFound,
				err,
				FailureDetails{PackIdentifier: identifier, FileName: fileName},
			).WithContext(ctx, "get_asset"))
		}
		return sendError(c, domain.NewAppErrorWithCause(
			domain.ErrInternal,
			"Failed to read asset",
			fiber.StatusInternalServerError,
			err,
			nil,
		).WithContext(ctx, "get_asset"))
	}

	if !pack.VerifyAsset(fileName, data) {
		log.Warn().
			Str("request_id", getRequestID(c)).
			Str("pack", identifier).
			Str("file", fileName).
			Msg("Asset differs from the certified bytes")
		return sendError(c, domain.NewAppError(
			domain.ErrAssetModified,
			"Asset changed since the pack was certified",
			fiber.StatusConflict,
			FailureDetails{PackIdentifier: identifier, FileName: fileName},
		).WithContext(ctx, "get_asset"))
	}

	if pack.AvoidCache {
		c.Set(fiber.HeaderCacheControl, "no-store")
	} else {
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	}
	c.Set(fiber.HeaderETag, `"`+pack.Identifier+"-"+pack.ImageDataVersion+`"`)
	c.Type(strings.TrimPrefix(path.Ext(fileName), "."))

	return c.Status(fiber.StatusOK).Send(data)
}

func packReferences(pack *domain.StickerPack, fileName string) bool {
	if fileName == pack.TrayImageFile {
		return true
	}
	for _, s := range pack.Stickers {
		if s.ImageFileName == fileName {
			return true
		}
	}
	return false
}

// ReloadHandler handles POST /v1/packs/reload requests
// @Summary      Reload the catalog
// @Description  Re-reads the manifest and its assets and certifies every pack again. On failure the previously certified packs stay in service.
// @Tags         Packs
// @Produce      json
// @Success      200 {object} SuccessResponse{data=object{message=string,count=int}} "Catalog reloaded"
// @Failure      400 {object} ErrorResponse "Manifest does not conform to the schema"
// @Failure      422 {object} ErrorResponse "A pack failed certification"
// @Failure      500 {object} ErrorResponse "Internal server error"
// @Router       /v1/packs/reload [post]
func (h *PackHandlers) ReloadHandler(c *fiber.Ctx) error {
	ctx := c.Context()

	if err := h.repository.Reload(ctx); err != nil {
		log.Warn().
			Err(err).
			Str("request_id", getRequestID(c)).
			Msg("Catalog reload rejected")
		return sendError(c, toAppError(err).WithContext(ctx, "reload"))
	}

	packs, err := h.repository.GetAllPacks(ctx)
	if err != nil {
		return sendError(c, toAppError(err).WithContext(ctx, "reload"))
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data: map[string]any{
			"message": "Catalog reloaded",
			"count":   len(packs),
		},
	})
}

// ParseManifestHandler handles POST /v1/manifests/parse requests
// @Summary      Check a manifest against the schema
// @Description  Parses a contents.json document without reading any asset
// @Tags         Manifests
// @Accept       json
// @Produce      json
// @Param        manifest body object true "contents.json document"
// @Success      200 {object} SuccessResponse{data=ManifestResponse} "Manifest conforms to the schema"
// @Failure      400 {object} ErrorResponse "Manifest does not conform to the schema"
// @Failure      413 {object} ErrorResponse "Manifest too large"
// @Router       /v1/manifests/parse [post]
func (h *PackHandlers) ParseManifestHandler(c *fiber.Ctx) error {
	ctx := c.Context()

	packs, err := h.certifier.Parse(ctx, c.Body())
	if err != nil {
		return sendError(c, toAppError(err).WithContext(ctx, "parse_manifest"))
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data:   ManifestResponse{Packs: packs, Count: len(packs)},
	})
}

// ValidateManifestHandler handles POST /v1/manifests/validate requests
// @Summary      Certify a manifest
// @Description  Parses a contents.json document and validates every pack against the assets on the server
// @Tags         Manifests
// @Accept       json
// @Produce      json
// @Param        manifest body object true "contents.json document"
// @Success      200 {object} SuccessResponse{data=ManifestResponse} "Every pack passed certification"
// @Failure      400 {object} ErrorResponse "Manifest does not conform to the schema"
// @Failure      413 {object} ErrorResponse "Manifest too large"
// @Failure      422 {object} ErrorResponse "A pack failed certification"
// @Router       /v1/manifests/validate [post]
func (h *PackHandlers) ValidateManifestHandler(c *fiber.Ctx) error {
	ctx := c.Context()

	packs, err := h.certifier.Certify(ctx, c.Body())
	if err != nil {
		return sendError(c, toAppError(err).WithContext(ctx, "validate_manifest"))
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data:   ManifestResponse{Packs: packs, Count: len(packs)},
	})
}
