package helper

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"gopkg.in/go-playground/validator.v9"

	"editorial-cms/draft"
	"editorial-cms/models"
)

const (
	textError             = `error`
	textOk                = `ok`
	codeSuccess           = 200
	codeBadRequestError   = 400
	codeUnauthorizedError = 401
	codeDatabaseError     = 402
	codeValidationError   = 403
	codeNotFound          = 404
)

// ResponseHelper ...
type ResponseHelper struct {
	C        *gin.Context
	Status   string
	Message  string
	Data     interface{}
	Code     int // not the http code
	CodeType string
}

// HTTPHelper ...
type HTTPHelper struct {
	Validate   *validator.Validate
	Translator ut.Translator
}

// NewHTTPHelper builds a helper whose validator reads `binding` tags, the
// same rules gin's request binding applies once Validate is installed with
// NewBindingValidator.
func NewHTTPHelper() *HTTPHelper {
	validate, trans := NewValidator("binding")
	return &HTTPHelper{Validate: validate, Translator: trans}
}

// GetStatusCode maps a service error to its HTTP status.
func (u *HTTPHelper) GetStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var (
		unauthorized *models.ErrorUnauthorized
		forbidden    *models.ErrorForbidden
		notFound     *models.ErrorNotFound
		conflict     *models.ErrorConflict
		invalid      *models.ErrorValidation
		submitErr    *draft.SubmitError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &notFound), errors.Is(err, draft.ErrArticleNotFound):
		return http.StatusNotFound
	case errors.As(err, &conflict),
		errors.Is(err, draft.ErrInvalidTransition),
		errors.Is(err, draft.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, draft.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.As(err, &submitErr):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// SendServiceError writes err with the status GetStatusCode picks.
// Validation errors carry their field messages; internal errors are not
// echoed to the client.
func (u *HTTPHelper) SendServiceError(c *gin.Context, err error) error {
	var invalid *models.ErrorValidation
	if errors.As(err, &invalid) {
		return u.SendFieldErrors(c, invalid.Fields)
	}

	status := u.GetStatusCode(err)
	message := err.Error()
	codeType := http.StatusText(status)
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	c.JSON(status, map[string]interface{}{
		"code":         status,
		"code_type":    codeType,
		"code_message": message,
		"data":         u.EmptyJsonMap(),
	})
	return nil
}

// SetResponse ...
// Set response data.
func (u *HTTPHelper) SetResponse(c *gin.Context, status string, message string, data interface{}, code int, codeType string) ResponseHelper {
	return ResponseHelper{c, status, message, data, code, codeType}
}

// SendError ...
// Send error response to consumers.
func (u *HTTPHelper) SendError(c *gin.Context, message string, data interface{}, code int, codeType string) error {
	res := u.SetResponse(c, textError, message, data, code, codeType)

	return u.SendResponse(res)
}

// SendBadRequest ...
// Send bad request response to consumers.
func (u *HTTPHelper) SendBadRequest(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textError, message, data, codeBadRequestError, `badRequest`)

	return u.SendResponse(res)
}

// SendValidationError ...
// Send validation error response to consumers.
func (u *HTTPHelper) SendValidationError(c *gin.Context, validationErrors validator.ValidationErrors) error {
	return u.SendFieldErrors(c, FieldErrors(validationErrors, u.Translator))
}

// SendFieldErrors ...
// Send field-keyed validation messages.
func (u *HTTPHelper) SendFieldErrors(c *gin.Context, fields map[string][]string) error {
	c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
		"code":         codeValidationError,
		"code_type":    "validationError",
		"code_message": fields,
		"data":         u.EmptyJsonMap(),
	})
	return nil
}

// SendBindError ...
// Reports a request that failed to bind. Validation failures from the
// binding tags are reported per field.
func (u *HTTPHelper) SendBindError(c *gin.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return u.SendValidationError(c, verrs)
	}
	return u.SendBadRequest(c, err.Error(), u.EmptyJsonMap())
}

// SendDatabaseError ...
// Send database error response to consumers.
func (u *HTTPHelper) SendDatabaseError(c *gin.Context, message string, data interface{}) error {
	return u.SendError(c, message, data, codeDatabaseError, `databaseError`)
}

// SendUnauthorizedError ...
// Send unauthorized response to consumers.
func (u *HTTPHelper) SendUnauthorizedError(c *gin.Context, message string, data interface{}) error {
	c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"code":         codeUnauthorizedError,
		"code_type":    `unAuthorized`,
		"code_message": message,
		"data":         data,
	})
	return nil
}

// SendForbiddenError ...
func (u *HTTPHelper) SendForbiddenError(c *gin.Context, message string, data interface{}) error {
	c.JSON(http.StatusForbidden, map[string]interface{}{
		"code":         http.StatusForbidden,
		"code_type":    `forbidden`,
		"code_message": message,
		"data":         data,
	})
	return nil
}

// SendTooManyRequests ...
func (u *HTTPHelper) SendTooManyRequests(c *gin.Context, message string) error {
	c.JSON(http.StatusTooManyRequests, map[string]interface{}{
		"code":         http.StatusTooManyRequests,
		"code_type":    `tooManyRequests`,
		"code_message": message,
		"data":         u.EmptyJsonMap(),
	})
	return nil
}

// SendNotFoundError ...
// Send not found response to consumers.
func (u *HTTPHelper) SendNotFoundError(c *gin.Context, message string, data interface{}) error {
	c.JSON(http.StatusNotFound, map[string]interface{}{
		"code":         codeNotFound,
		"code_type":    `notFound`,
		"code_message": message,
		"data":         data,
	})
	return nil
}

// SendSuccess ...
// Send success response to consumers.
func (u *HTTPHelper) SendSuccess(c *gin.Context, message string, data interface{}) error {
	res := u.SetResponse(c, textOk, message, data, codeSuccess, `success`)

	return u.SendResponse(res)
}

// SendCreated ...
func (u *HTTPHelper) SendCreated(c *gin.Context, message string, data interface{}) error {
	c.JSON(http.StatusCreated, map[string]interface{}{
		"code":         http.StatusCreated,
		"code_type":    `created`,
		"code_message": message,
		"data":         data,
	})
	return nil
}

// SendResponse ...
// Send response
func (u *HTTPHelper) SendResponse(res ResponseHelper) error {
	if len(res.Message) == 0 {
		res.Message = `success`
	}

	var resCode int
	if res.Code != 200 {
		resCode = http.StatusBadRequest
	} else {
		resCode = http.StatusOK
	}

	res.C.JSON(resCode, map[string]interface{}{
		"code":         res.Code,
		"code_type":    res.CodeType,
		"code_message": res.Message,
		"data":         res.Data,
	})
	return nil
}

func (u *HTTPHelper) EmptyJsonMap() map[string]interface{} {
	return make(map[string]interface{})
}

// get pagination URL
func (u *HTTPHelper) GetPagingUrl(c *gin.Context, page, limit int) string {
	r := c.Request
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	currentURL := scheme + "://" + r.Host + r.URL.Path + "?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(limit)
	return currentURL
}

// Set paginantion response
func (u *HTTPHelper) GeneratePaging(c *gin.Context, limit, page, totalRecord int) map[string]interface{} {
	prevURL, nextURL, firstURL, lastURL := "", "", "", ""

	if limit < 1 {
		limit = 1
	}
	totalPages := int(math.Ceil(float64(totalRecord) / float64(limit)))

	if totalPages >= page && page > 1 {
		prevURL = u.GetPagingUrl(c, page-1, limit)
		firstURL = u.GetPagingUrl(c, 1, limit)
	}

	if totalPages > page {
		nextURL = u.GetPagingUrl(c, page+1, limit)
		lastURL = u.GetPagingUrl(c, totalPages, limit)
	}

	links := map[string]interface{}{
		"previous": prevURL,
		"next":     nextURL,
		"first":    firstURL,
		"last":     lastURL,
	}

	pagination := map[string]interface{}{
		"total_records": totalRecord,
		"per_page":      limit,
		"current_page":  page,
		"total_pages":   totalPages,
		"links":         links,
	}

	return pagination
}
