package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	certUC "github.com/khoahotran/portfolio-api/internal/application/usecase/certification"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/collection"
	langUC "github.com/khoahotran/portfolio-api/internal/application/usecase/language"
	skillUC "github.com/khoahotran/portfolio-api/internal/application/usecase/skill"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type CollectionHandler struct {
	certUseCase  *certUC.CertificationUseCase
	langUseCase  *langUC.LanguageUseCase
	skillUseCase *skillUC.SkillUseCase
	bulkUseCase  *collection.BulkUseCase
	logger       logger.Logger
}

func NewCollectionHandler(
	certUseCase *certUC.CertificationUseCase,
	langUseCase *langUC.LanguageUseCase,
	skillUseCase *skillUC.SkillUseCase,
	bulkUseCase *collection.BulkUseCase,
	log logger.Logger,
) *CollectionHandler {
	return &CollectionHandler{
		certUseCase:  certUseCase,
		langUseCase:  langUseCase,
		skillUseCase: skillUseCase,
		bulkUseCase:  bulkUseCase,
		logger:       log,
	}
}

func paramID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid "+resource+" ID", err))
		return uuid.Nil, false
	}
	return id, true
}

// decodeList reads a JSON array body. Anything else is rejected before any
// write happens.
func decodeList[T any](c *gin.Context, kind string) ([]T, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.Error(apperror.NewInvalidInput("failed to read request body", err))
		return nil, false
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '[' {
		c.Error(apperror.NewValidation("Expected a list of "+kind, []string{"non_field_errors: Expected a list of items."}))
		return nil, false
	}

	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON list of "+kind, err))
		return nil, false
	}
	return items, true
}

func bulkResponse(c *gin.Context, kind string, res *collection.Result) {
	c.JSON(http.StatusOK, gin.H{
		"status":  kind + " updated successfully",
		"created": res.Created,
		"reused":  res.Reused,
	})
}

// Certifications

func (h *CollectionHandler) ListCertifications(c *gin.Context) {
	certs, err := h.certUseCase.List(c.Request.Context(), CallerFromGinContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCertificationDTOs(certs))
}

func (h *CollectionHandler) GetCertification(c *gin.Context) {
	id, ok := paramID(c, "certification")
	if !ok {
		return
	}
	cert, err := h.certUseCase.Get(c.Request.Context(), CallerFromGinContext(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCertificationDTO(cert))
}

func (h *CollectionHandler) AddCertification(c *gin.Context) {
	var spec collection.CertificationSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	cert, err := h.certUseCase.Add(c.Request.Context(), CallerFromGinContext(c), spec)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToCertificationDTO(cert))
}

func (h *CollectionHandler) UpdateCertification(c *gin.Context) {
	id, ok := paramID(c, "certification")
	if !ok {
		return
	}
	var req UpdateCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	cert, err := h.certUseCase.Update(c.Request.Context(), certUC.UpdateCertificationInput{
		Caller:     CallerFromGinContext(c),
		ID:         id,
		Title:      req.Title,
		Issuer:     req.Issuer,
		Date:       req.Date,
		Badge:      req.Badge,
		Type:       req.Type,
		InProgress: req.InProgress,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToCertificationDTO(cert))
}

func (h *CollectionHandler) RemoveCertification(c *gin.Context) {
	id, ok := paramID(c, "certification")
	if !ok {
		return
	}
	if err := h.certUseCase.Remove(c.Request.Context(), CallerFromGinContext(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollectionHandler) BulkCertifications(c *gin.Context) {
	specs, ok := decodeList[collection.CertificationSpec](c, "certifications")
	if !ok {
		return
	}
	res, err := h.bulkUseCase.Certifications(c.Request.Context(), CallerFromGinContext(c), specs)
	if err != nil {
		c.Error(err)
		return
	}
	bulkResponse(c, "Certifications", res)
}

// Languages

func (h *CollectionHandler) ListLanguages(c *gin.Context) {
	langs, err := h.langUseCase.List(c.Request.Context(), CallerFromGinContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToLanguageDTOs(langs))
}

func (h *CollectionHandler) GetLanguage(c *gin.Context) {
	id, ok := paramID(c, "language")
	if !ok {
		return
	}
	l, err := h.langUseCase.Get(c.Request.Context(), CallerFromGinContext(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToLanguageDTO(l))
}

func (h *CollectionHandler) AddLanguage(c *gin.Context) {
	var spec collection.LanguageSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	l, err := h.langUseCase.Add(c.Request.Context(), CallerFromGinContext(c), spec)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToLanguageDTO(l))
}

func (h *CollectionHandler) UpdateLanguage(c *gin.Context) {
	id, ok := paramID(c, "language")
	if !ok {
		return
	}
	var req UpdateLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	l, err := h.langUseCase.Update(c.Request.Context(), langUC.UpdateLanguageInput{
		Caller:      CallerFromGinContext(c),
		ID:          id,
		Name:        req.Name,
		Proficiency: req.Proficiency,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToLanguageDTO(l))
}

func (h *CollectionHandler) RemoveLanguage(c *gin.Context) {
	id, ok := paramID(c, "language")
	if !ok {
		return
	}
	if err := h.langUseCase.Remove(c.Request.Context(), CallerFromGinContext(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CollectionHandler) BulkLanguages(c *gin.Context) {
	specs, ok := decodeList[collection.LanguageSpec](c, "languages")
	if !ok {
		return
	}
	res, err := h.bulkUseCase.Languages(c.Request.Context(), CallerFromGinContext(c), specs)
	if err != nil {
		c.Error(err)
		return
	}
	bulkResponse(c, "Languages", res)
}

// Skill categories

func (h *CollectionHandler) ListSkillCategories(c *gin.Context) {
	cats, err := h.skillUseCase.ListCategories(c.Request.Context(), CallerFromGinContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillCategoryDTOs(cats))
}

func (h *CollectionHandler) GetSkillCategory(c *gin.Context) {
	id, ok := paramID(c, "skill category")
	if !ok {
		return
	}
	cat, err := h.skillUseCase.GetCategory(c.Request.Context(), CallerFromGinContext(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillCategoryDTO(cat))
}

func (h *CollectionHandler) AddSkillCategory(c *gin.Context) {
	var spec collection.SkillCategorySpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	cat, err := h.skillUseCase.AddCategory(c.Request.Context(), CallerFromGinContext(c), spec)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToSkillCategoryDTO(cat))
}

func (h *CollectionHandler) RenameSkillCategory(c *gin.Context) {
	id, ok := paramID(c, "skill category")
	if !ok {
		return
	}
	var req RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	cat, err := h.skillUseCase.RenameCategory(c.Request.Context(), skillUC.RenameCategoryInput{
		Caller: CallerFromGinContext(c),
		ID:     id,
		Name:   req.Name,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillCategoryDTO(cat))
}

func (h *CollectionHandler) RemoveSkillCategory(c *gin.Context) {
	id, ok := paramID(c, "skill category")
	if !ok {
		return
	}
	if err := h.skillUseCase.RemoveCategory(c.Request.Context(), CallerFromGinContext(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkSkills syncs skill categories with their nested skills.
func (h *CollectionHandler) BulkSkills(c *gin.Context) {
	specs, ok := decodeList[collection.SkillCategorySpec](c, "skill categories")
	if !ok {
		return
	}
	res, err := h.bulkUseCase.SkillCategories(c.Request.Context(), CallerFromGinContext(c), specs)
	if err != nil {
		c.Error(err)
		return
	}
	bulkResponse(c, "Skills", res)
}

// Skills

func (h *CollectionHandler) ListSkills(c *gin.Context) {
	skills, err := h.skillUseCase.ListSkills(c.Request.Context(), CallerFromGinContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillDTOs(skills))
}

func (h *CollectionHandler) GetSkill(c *gin.Context) {
	id, ok := paramID(c, "skill")
	if !ok {
		return
	}
	s, err := h.skillUseCase.GetSkill(c.Request.Context(), CallerFromGinContext(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillDTO(s))
}

func (h *CollectionHandler) AddSkill(c *gin.Context) {
	var req AddSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	s, err := h.skillUseCase.AddSkill(c.Request.Context(), skillUC.AddSkillInput{
		Caller:       CallerFromGinContext(c),
		CategoryID:   req.Category,
		CategoryName: req.CategoryName,
		Name:         req.Name,
		Level:        req.Level,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToSkillDTO(s))
}

func (h *CollectionHandler) UpdateSkill(c *gin.Context) {
	id, ok := paramID(c, "skill")
	if !ok {
		return
	}
	var req UpdateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	s, err := h.skillUseCase.UpdateSkill(c.Request.Context(), skillUC.UpdateSkillInput{
		Caller: CallerFromGinContext(c),
		ID:     id,
		Name:   req.Name,
		Level:  req.Level,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSkillDTO(s))
}

func (h *CollectionHandler) RemoveSkill(c *gin.Context) {
	id, ok := paramID(c, "skill")
	if !ok {
		return
	}
	if err := h.skillUseCase.RemoveSkill(c.Request.Context(), CallerFromGinContext(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
