//go:build integration

package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"editorial-cms/cache"
	"editorial-cms/config"
	"editorial-cms/draft"
	"editorial-cms/events"
	"editorial-cms/handlers"
	"editorial-cms/helper"
	"editorial-cms/models"
	"editorial-cms/repositories"
	"editorial-cms/services"
)

const jwtSecret = "test-secret"

// The suite starts a Postgres container unless CMS_TEST_DSN points at a
// disposable database, e.g.
// CMS_TEST_DSN="host=localhost port=5432 user=myuser password=mypassword dbname=cms_test_db sslmode=disable"
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	router *gin.Engine
	token  string
	userID uint
}

type response struct {
	Code        int             `json:"code"`
	CodeMessage json.RawMessage `json:"code_message"`
	CodeType    string          `json:"code_type"`
	Data        json.RawMessage `json:"data"`
}

func (suite *IntegrationTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	dsn := os.Getenv("CMS_TEST_DSN")
	if dsn == "" {
		container, err := tcpostgres.Run(suite.ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("cms_test_db"),
			tcpostgres.WithUsername("test"),
			tcpostgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		suite.Require().NoError(err)
		suite.container = container

		dsn, err = container.ConnectionString(suite.ctx, "sslmode=disable")
		suite.Require().NoError(err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		suite.T().Fatal("Failed to connect to test database:", err)
	}
	suite.db = db

	migrationsPath, err := filepath.Abs("../migrations")
	suite.Require().NoError(err)
	if err := config.RunMigrations(db, migrationsPath, zerolog.Nop()); err != nil {
		suite.T().Fatal("Failed to migrate test database:", err)
	}

	suite.setupRouter()
}

func (suite *IntegrationTestSuite) setupRouter() {
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(suite.db)
	articleRepo := repositories.NewArticleRepository(suite.db)
	articleVersionRepo := repositories.NewArticleVersionRepository(suite.db)
	tagRepo := repositories.NewTagRepository(suite.db)
	categoryRepo := repositories.NewCategoryRepository(suite.db)

	// Initialize services
	authService := services.NewAuthService(userRepo, config.JWTConfig{Secret: []byte(jwtSecret), Expiration: time.Hour})
	articleService := services.NewArticleService(articleRepo, articleVersionRepo, tagRepo, categoryRepo, events.Nop{}, log)
	readService := services.NewReadService(articleService, cache.NewMemory(time.Minute, time.Minute), time.Minute, log)
	draftService := services.NewDraftSessionService(articleService, time.Hour, time.Hour, log)

	h := helper.NewHTTPHelper()
	suite.router = handlers.NewRouter(handlers.Router{
		Auth:     handlers.NewAuthHandler(authService, h),
		Article:  handlers.NewArticleHandler(articleService, readService, h),
		Draft:    handlers.NewDraftHandler(draftService, h),
		Document: handlers.NewDocumentHandler(readService, h),
		Tag:      handlers.NewTagHandler(services.NewTagService(tagRepo), h),
		Category: handlers.NewCategoryHandler(services.NewCategoryService(categoryRepo), h),
	}, h, []byte(jwtSecret), log)
}

func (suite *IntegrationTestSuite) TearDownSuite() {
	if suite.db != nil {
		if sqlDB, err := suite.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if suite.container != nil {
		_ = suite.container.Terminate(suite.ctx)
	}
}

func (suite *IntegrationTestSuite) SetupTest() {
	// Clean all tables before each test
	suite.db.Exec("TRUNCATE TABLE article_version_tags, article_versions, articles, tags, categories, users RESTART IDENTITY CASCADE")

	suite.registerAndLoginTestUser()
}

func (suite *IntegrationTestSuite) request(method, path string, payload interface{}) (*httptest.ResponseRecorder, response) {
	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if suite.token != "" {
		req.Header.Set("Authorization", "Bearer "+suite.token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var resp response
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func (suite *IntegrationTestSuite) registerAndLoginTestUser() {
	suite.token = ""
	w, _ := suite.request(http.MethodPost, "/api/v1/auth/register", models.RegisterRequest{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "password123",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	// Self registration only creates writers.
	suite.Require().NoError(suite.db.Exec("UPDATE users SET role = ? WHERE email = ?", models.RoleAdmin, "test@example.com").Error)

	w, resp := suite.request(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var auth models.AuthResponse
	suite.Require().NoError(json.Unmarshal(resp.Data, &auth))
	suite.token = auth.Token
	suite.userID = auth.User.ID
}

// publish runs a draft session for a new article through to a commit and
// returns the new article id.
func (suite *IntegrationTestSuite) publish(edit models.EditDraftRequest, action draft.Action) uint {
	w, resp := suite.request(http.MethodPost, "/api/v1/drafts", nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var sess services.DraftSession
	suite.Require().NoError(json.Unmarshal(resp.Data, &sess))

	w, _ = suite.request(http.MethodPut, "/api/v1/drafts/"+sess.ID, edit)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, _ = suite.request(http.MethodPost, "/api/v1/drafts/"+sess.ID+"/preview", nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w, resp = suite.request(http.MethodPost, "/api/v1/drafts/"+sess.ID+"/submit", models.SubmitDraftRequest{Action: string(action)})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Outcome draft.Outcome `json:"outcome"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &result))
	suite.Require().NotZero(result.Outcome.ArticleID)
	return result.Outcome.ArticleID
}

func (suite *IntegrationTestSuite) TestAuthFlow() {
	w, _ := suite.request(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
		Email:    "test@example.com",
		Password: "wrong-password",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, resp := suite.request(http.MethodGet, "/api/v1/profile", nil)
	suite.Equal(http.StatusOK, w.Code)

	var user models.User
	suite.NoError(json.Unmarshal(resp.Data, &user))
	suite.Equal("testuser", user.Username)
	suite.Equal(models.RoleAdmin, user.Role)
}

func (suite *IntegrationTestSuite) TestPublishNewArticle() {
	id := suite.publish(models.EditDraftRequest{
		Title: "Test Article",
		Body:  `{"ops":[{"insert":"This is "},{"insert":"test","attributes":{"italic":true}},{"insert":" content\n"}]}`,
		Tags:  []string{"Golang", "api", "golang"},
	}, draft.ActionPublish)

	suite.token = ""
	w, resp := suite.request(http.MethodGet, fmt.Sprintf("/api/v1/public/articles/%d", id), nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var view models.ArticleView
	suite.Require().NoError(json.Unmarshal(resp.Data, &view))
	suite.Equal("Test Article", view.Article.Title)
	suite.Equal("This is test content", view.Summary)
	suite.Contains(view.HTML, "<em>test</em>")
	suite.ElementsMatch([]string{"golang", "api"}, view.Version.TagNames())
	suite.Equal(1, view.Article.ViewCount)
}

func (suite *IntegrationTestSuite) TestSavedDraftIsNotPublic() {
	id := suite.publish(models.EditDraftRequest{Title: "Hidden"}, draft.ActionSaveDraft)

	w, resp := suite.request(http.MethodGet, fmt.Sprintf("/api/v1/articles/%d", id), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var view models.ArticleView
	suite.Require().NoError(json.Unmarshal(resp.Data, &view))
	suite.Equal(models.StatusDraft, view.Version.Status)

	suite.token = ""
	w, _ = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/public/articles/%d", id), nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestEditExistingArticle() {
	id := suite.publish(models.EditDraftRequest{Title: "Original", Tags: []string{"version"}}, draft.ActionPublish)

	w, resp := suite.request(http.MethodPost, "/api/v1/drafts", models.StartDraftRequest{ArticleID: &id})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var sess services.DraftSession
	suite.Require().NoError(json.Unmarshal(resp.Data, &sess))
	suite.Equal("Original", sess.Snapshot.Title)

	w, _ = suite.request(http.MethodPut, "/api/v1/drafts/"+sess.ID, models.EditDraftRequest{Title: "Updated", Tags: []string{"version", "updated"}})
	suite.Require().Equal(http.StatusOK, w.Code)
	w, _ = suite.request(http.MethodPost, "/api/v1/drafts/"+sess.ID+"/preview", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w, resp = suite.request(http.MethodPost, "/api/v1/drafts/"+sess.ID+"/submit", models.SubmitDraftRequest{Action: "publish"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Outcome draft.Outcome          `json:"outcome"`
		Session *services.DraftSession `json:"session"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &result))
	suite.Equal(id, result.Outcome.ArticleID)
	suite.Equal(draft.DestinationArticle, result.Outcome.Destination)
	suite.Nil(result.Session)

	w, resp = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/articles/%d/versions", id), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var versions []models.ArticleVersion
	suite.Require().NoError(json.Unmarshal(resp.Data, &versions))
	suite.Require().Len(versions, 2)

	statuses := map[int]models.ArticleStatus{}
	for _, v := range versions {
		statuses[v.VersionNumber] = v.Status
	}
	suite.Equal(models.StatusArchivedVersion, statuses[1])
	suite.Equal(models.StatusPublished, statuses[2])
}

func (suite *IntegrationTestSuite) TestSubmitRejectsInvalidSnapshot() {
	w, resp := suite.request(http.MethodPost, "/api/v1/drafts", nil)
	suite.Require().Equal(http.StatusCreated, w.Code)
	var sess services.DraftSession
	suite.Require().NoError(json.Unmarshal(resp.Data, &sess))

	missing := uint(999)
	suite.request(http.MethodPut, "/api/v1/drafts/"+sess.ID, models.EditDraftRequest{Body: "not a document", CategoryID: &missing})
	suite.request(http.MethodPost, "/api/v1/drafts/"+sess.ID+"/preview", nil)

	w, _ = suite.request(http.MethodPost, "/api/v1/drafts/"+sess.ID+"/submit", models.SubmitDraftRequest{Action: "publish"})
	suite.Equal(http.StatusUnprocessableEntity, w.Code)

	w, resp = suite.request(http.MethodGet, "/api/v1/drafts/"+sess.ID+"/preview", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var view draft.PreviewView
	suite.Require().NoError(json.Unmarshal(resp.Data, &view))
	suite.Contains(view.Errors, "title")
	suite.Contains(view.Errors, "body")
	suite.Contains(view.Errors, "category_id")
	suite.True(view.Fallback)
}

func (suite *IntegrationTestSuite) TestCategoriesAndTags() {
	w, resp := suite.request(http.MethodPost, "/api/v1/categories", models.CreateCategoryRequest{Name: "Engineering", Slug: "engineering"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var category models.Category
	suite.Require().NoError(json.Unmarshal(resp.Data, &category))

	w, _ = suite.request(http.MethodPost, "/api/v1/categories", models.CreateCategoryRequest{Name: "Engineering", Slug: "engineering"})
	suite.Equal(http.StatusConflict, w.Code)

	suite.publish(models.EditDraftRequest{Title: "One", CategoryID: &category.ID, Tags: []string{"go", "cms"}}, draft.ActionPublish)
	suite.publish(models.EditDraftRequest{Title: "Two", Tags: []string{"go"}}, draft.ActionPublish)

	w, resp = suite.request(http.MethodGet, "/api/v1/tags", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var tags []models.Tag
	suite.Require().NoError(json.Unmarshal(resp.Data, &tags))
	suite.Require().Len(tags, 2)
	suite.Equal("go", tags[0].Name)
	suite.Equal(2, tags[0].UsageCount)

	w, resp = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/public/articles?category_id=%d", category.ID), nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var list struct {
		Articles []models.ArticleView `json:"articles"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &list))
	suite.Require().Len(list.Articles, 1)
	suite.Equal("One", list.Articles[0].Article.Title)
}

func (suite *IntegrationTestSuite) TestDeleteArticle() {
	id := suite.publish(models.EditDraftRequest{Title: "Short lived"}, draft.ActionPublish)

	w, _ := suite.request(http.MethodDelete, fmt.Sprintf("/api/v1/articles/%d", id), nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/articles/%d", id), nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
