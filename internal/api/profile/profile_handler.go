package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-identity-profiles/config"
	"github.com/FACorreiaa/go-identity-profiles/internal/api"
	"github.com/FACorreiaa/go-identity-profiles/internal/api/auth"
	"github.com/FACorreiaa/go-identity-profiles/internal/types"
)

const dobLayout = "2006-01-02"

// ImageStore is the object-store collaborator for profile image uploads. The
// core only persists the returned URL string.
type ImageStore interface {
	UploadProfileImage(ctx context.Context, userID, filename string, data []byte, contentType string) (string, error)
	RemoveProfileImage(ctx context.Context, imageURL string) error
}

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetProfile(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
}

// HandlerImpl handles HTTP requests for profile operations. All routes sit
// behind the Authenticate middleware.
type HandlerImpl struct {
	profileService ProfileService
	images         ImageStore
	media          config.MediaConfig
	logger         *slog.Logger
}

func NewHandlerImpl(profileService ProfileService, images ImageStore, media config.MediaConfig, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		profileService: profileService,
		images:         images,
		media:          media,
		logger:         logger,
	}
}

// GetProfile returns the authenticated user's profile view.
func (h *HandlerImpl) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetProfile"))

	userID, ok := userIDFromRequest(ctx)
	if !ok {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	view, err := h.profileService.GetProfile(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch profile", slog.Any("error", err))
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
		} else {
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch profile")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Profile fetched successfully",
		Data:    view,
	})
}

// UpdateProfile accepts a multipart form with a sparse set of fields plus an
// optional image file, uploads the image to the object store and upserts the
// profile.
func (h *HandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateProfile"))

	userID, ok := userIDFromRequest(ctx)
	if !ok {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	// Form text fields plus the image must fit the configured upload cap.
	r.Body = http.MaxBytesReader(w, r.Body, h.media.MaxUploadBytes+1_048_576)
	if err := r.ParseMultipartForm(h.media.MaxUploadBytes); err != nil {
		l.WarnContext(ctx, "Failed to parse multipart form", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid multipart form data")
		return
	}

	params, err := paramsFromForm(r)
	if err != nil {
		l.WarnContext(ctx, "Invalid profile form field", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	imageURL, err := h.storeImage(r, userID)
	if err != nil {
		if errors.Is(err, types.ErrValidation) {
			l.WarnContext(ctx, "Rejected profile image", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, validationMessage(err))
		} else {
			l.ErrorContext(ctx, "Failed to store profile image", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to store profile image")
		}
		return
	}
	// Uploads get a fresh object key, so a replaced image leaves its old
	// object orphaned unless it is removed after the swap commits.
	var replacedImage *string
	if imageURL != nil {
		if current, err := h.profileService.GetProfile(ctx, userID); err == nil {
			replacedImage = current.Image
		}
		params.Image = imageURL
	}

	view, err := h.profileService.UpdateProfile(ctx, userID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		switch {
		case errors.Is(err, types.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, validationMessage(err))
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Email already exists")
		default:
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	if imageURL != nil && replacedImage != nil && *replacedImage != *imageURL {
		// Best effort; a leaked object is not worth failing the update over.
		if err := h.images.RemoveProfileImage(ctx, *replacedImage); err != nil {
			l.WarnContext(ctx, "Failed to remove replaced profile image", slog.Any("error", err))
		}
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Profile updated successfully",
		Data:    view,
	})
}

// storeImage uploads the optional "image" form file and returns its URL, or
// nil when no file was attached.
func (h *HandlerImpl) storeImage(r *http.Request, userID uuid.UUID) (*string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read image form file: %w", err)
	}
	defer file.Close()

	if header.Size > h.media.MaxUploadBytes {
		return nil, fmt.Errorf("image exceeds the %d byte limit: %w", h.media.MaxUploadBytes, types.ErrValidation)
	}

	data, err := io.ReadAll(io.LimitReader(file, h.media.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > h.media.MaxUploadBytes {
		return nil, fmt.Errorf("image exceeds the %d byte limit: %w", h.media.MaxUploadBytes, types.ErrValidation)
	}

	contentType := http.DetectContentType(data)
	if !slices.Contains(h.media.AllowedTypes, contentType) {
		return nil, fmt.Errorf("image type %s is not allowed: %w", contentType, types.ErrValidation)
	}

	url, err := h.images.UploadProfileImage(r.Context(), userID.String(), header.Filename, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}
	return &url, nil
}

// paramsFromForm builds sparse update params from the multipart form. Absent
// or empty fields stay nil so stored values survive the merge.
func paramsFromForm(r *http.Request) (types.UpdateProfileParams, error) {
	var params types.UpdateProfileParams

	if v := r.FormValue("name"); v != "" {
		params.Name = &v
	}
	if v := r.FormValue("email"); v != "" {
		params.Email = &v
	}
	if v := r.FormValue("age"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil {
			return params, fmt.Errorf("age must be a number: %w", types.ErrValidation)
		}
		params.Age = &age
	}
	if v := r.FormValue("dob"); v != "" {
		dob, err := time.Parse(dobLayout, v)
		if err != nil {
			return params, fmt.Errorf("dob must be a valid date (YYYY-MM-DD): %w", types.ErrValidation)
		}
		params.DOB = &dob
	}
	if v := r.FormValue("contact"); v != "" {
		params.Contact = &v
	}
	if v := r.FormValue("region"); v != "" {
		params.Region = &v
	}
	if v := r.FormValue("bio"); v != "" {
		params.Bio = &v
	}

	return params, nil
}

// validationMessage strips the wrapped sentinel so the client sees only the
// field-level description.
func validationMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+types.ErrValidation.Error())
}

func userIDFromRequest(ctx context.Context) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
