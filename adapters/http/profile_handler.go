package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/media"
	profileUC "github.com/khoahotran/portfolio-api/internal/application/usecase/profile"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
	logger         logger.Logger
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: uc,
		logger:         log,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	view, err := h.profileUseCase.Get(c.Request.Context(), CallerFromGinContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(view))
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var input profileUC.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile update", err))
		return
	}
	input.Caller = CallerFromGinContext(c)

	view, err := h.profileUseCase.Update(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(view))
}

func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	if err := h.profileUseCase.Delete(c.Request.Context(), CallerFromGinContext(c)); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) UploadImage(c *gin.Context) {
	file, closeFile, err := formImage(c, "profile_image")
	if err != nil {
		c.Error(err)
		return
	}
	defer closeFile()

	url, err := h.profileUseCase.UploadImage(c.Request.Context(), CallerFromGinContext(c), file)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Profile image uploaded successfully",
		"imageUrl": url,
	})
}

// formImage opens the multipart file under field.
func formImage(c *gin.Context, field string) (media.ImageFile, func(), error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return media.ImageFile{}, nil, apperror.NewAppError(apperror.ErrInvalidInput, "No image file provided", "'"+field+"' is required", err)
	}
	f, err := fileHeader.Open()
	if err != nil {
		return media.ImageFile{}, nil, apperror.NewInternal("failed to open file", err)
	}
	return media.ImageFile{
		Reader:      f,
		Size:        fileHeader.Size,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, func() { f.Close() }, nil
}
