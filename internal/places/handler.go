package places

import (
	"encoding/json"
	"io"
	"net/http"

	"frontsnap_backend/platform/apperr"
	"frontsnap_backend/platform/geo"
	"frontsnap_backend/platform/httpkit"
	"frontsnap_backend/platform/logger"
	"frontsnap_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// maxPhotoBytes bounds the in-memory photo read; MinIO enforces its own
// limit on the stored object.
const maxPhotoBytes = 25 << 20

// Handler exposes the resolution pipeline over HTTP.
type Handler struct {
	resolver     *Resolver
	searcher     *Searcher
	repo         *Repository
	shareBaseURL string
	val          *validator.Validator
	log          *logger.Logger
}

func NewHandler(resolver *Resolver, searcher *Searcher, repo *Repository, shareBaseURL string, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{
		resolver:     resolver,
		searcher:     searcher,
		repo:         repo,
		shareBaseURL: shareBaseURL,
		val:          val,
		log:          log,
	}
}

type nearbyRequest struct {
	Lat          float64  `json:"lat" validate:"gte=-90,lte=90"`
	Lng          float64  `json:"lng" validate:"gte=-180,lte=180"`
	RadiusMeters *float64 `json:"radiusMeters" validate:"omitempty,gt=0,lte=5000"`
}

type retryRequest struct {
	RejectedPlaceID string `json:"rejectedPlaceId" validate:"omitempty,max=256"`
	Query           string `json:"query" validate:"omitempty,max=200"`
}

// Resolve handles POST /places/resolve: a multipart capture upload with the
// photo file, optional structured metadata, and an optional device location.
func (h *Handler) Resolve(c *gin.Context) {
	userID, ok := httpkit.UserID(c)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "photo file is required", nil)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	photo, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to read photo", nil)
		return
	}
	if len(photo) > maxPhotoBytes {
		httpkit.Error(c, http.StatusRequestEntityTooLarge, "photo exceeds the size limit", nil)
		return
	}

	input := ResolveInput{
		Photo:          photo,
		ContentType:    header.Header.Get("Content-Type"),
		FileName:       header.Filename,
		Metadata:       parseMetadata(c.PostForm("metadata")),
		DeviceLocation: parseDeviceLocation(c),
		UserID:         userID,
	}

	result, err := h.resolver.Resolve(c.Request.Context(), input)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Retry handles POST /places/resolve/:session/retry: the user said "wrong
// place", so re-run the search without the rejected candidate.
func (h *Handler) Retry(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid session id", nil)
		return
	}

	var req retryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.resolver.Retry(c.Request.Context(), sessionID, req.RejectedPlaceID, req.Query)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// Nearby handles POST /places/nearby: the manual-override flow that lists
// everything around a coordinate without direction filtering.
func (h *Handler) Nearby(c *gin.Context) {
	var req nearbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	radius := 0.0
	if req.RadiusMeters != nil {
		radius = *req.RadiusMeters
	}

	candidates, err := h.searcher.NearbyAll(c.Request.Context(), geo.Point{Lat: req.Lat, Lng: req.Lng}, radius)
	if err != nil {
		h.log.CollaboratorError("google_places", "nearby_search", err)
		httpkit.HandleError(c, apperr.Unavailable("nearby search failed"))
		return
	}

	if candidates == nil {
		candidates = []Candidate{}
	}
	httpkit.OK(c, gin.H{"candidates": candidates})
}

// GetPlace handles GET /places/:id, serving the cached record and falling
// back to a live details fetch for places not yet persisted.
func (h *Handler) GetPlace(c *gin.Context) {
	placeID := c.Param("id")

	place, err := h.repo.GetPlace(c.Request.Context(), placeID)
	if err == nil {
		httpkit.OK(c, place)
		return
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		h.log.DatabaseError("get_place", err)
		httpkit.HandleError(c, apperr.Internal("failed to load place"))
		return
	}

	details, err := h.resolver.FetchDetails(c.Request.Context(), placeID)
	if err != nil {
		httpkit.HandleError(c, apperr.NotFound(placeNotFoundMessage))
		return
	}
	httpkit.OK(c, details)
}

// ShareQR handles GET /places/:id/qr, rendering a QR code for the place's
// share link as a PNG.
func (h *Handler) ShareQR(c *gin.Context) {
	placeID := c.Param("id")
	if placeID == "" {
		httpkit.Error(c, http.StatusBadRequest, "place id is required", nil)
		return
	}

	png, err := qrcode.Encode(h.shareBaseURL+"/"+placeID, qrcode.Medium, 256)
	if err != nil {
		httpkit.HandleError(c, apperr.Internal("failed to render qr code"))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func parseMetadata(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var metadata map[string]any
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		// Malformed metadata degrades to EXIF extraction from the bytes.
		return nil
	}
	return metadata
}

func parseDeviceLocation(c *gin.Context) *geo.Point {
	latRaw, lngRaw := c.PostForm("deviceLat"), c.PostForm("deviceLng")
	if latRaw == "" || lngRaw == "" {
		return nil
	}

	lat, latOK := toFloat(latRaw)
	lng, lngOK := toFloat(lngRaw)
	if !latOK || !lngOK {
		return nil
	}

	point := geo.Point{Lat: lat, Lng: lng}
	if !point.Valid() {
		return nil
	}
	return &point
}
