package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"score_analysis_backend/internal/config"
	"score_analysis_backend/internal/repository"
	"score_analysis_backend/internal/service"
	"score_analysis_backend/internal/source"
	"score_analysis_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const scoresCSV = "姓名,考号,语文,数学,总分赋分\n" +
	"张三,1,100,120,220\n" +
	"李四,2,90,0,90\n"

const knowledgeCSV = "姓名,考号,Q1,Q2\n" +
	",,函数,函数\n" +
	",,10,20\n" +
	"张三,1,10,0\n" +
	"李四,2,6,20\n"

type failingFetcher struct{}

func (failingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return nil, fmt.Errorf("%w: dial tcp: connection refused", source.ErrSourceUnavailable)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{Source: config.SourceConfig{MaxUploadMB: 1}}
	sheets := service.NewSheetService(
		repository.NewSheetRepository(db),
		&service.LocalStorageProvider{Root: t.TempDir()},
		nil,
		failingFetcher{},
		cfg,
	)
	analysis, err := service.NewAnalysisService(sheets, cfg)
	require.NoError(t, err)

	sc := NewSheetController(sheets)
	ac := NewAnalysisController(analysis)
	ec := NewExportController(service.NewExportService(analysis))

	r := gin.New()
	api := r.Group("/api/sheets")
	api.POST("/upload", sc.Upload)
	api.POST("/remote", sc.RegisterRemote)
	api.GET("", sc.List)
	api.GET("/:sheet_id", sc.Get)
	api.DELETE("/:sheet_id", sc.Delete)
	api.GET("/:sheet_id/subjects", ac.Subjects)
	api.GET("/:sheet_id/overview", ac.Overview)
	api.GET("/:sheet_id/students/report", ac.StudentReport)
	api.GET("/:sheet_id/knowledge-points/students", ac.KnowledgeStudents)
	api.GET("/:sheet_id/knowledge-points/student", ac.StudentKnowledge)
	api.GET("/:sheet_id/knowledge-points/cohort", ac.CohortKnowledge)
	api.GET("/:sheet_id/export/:kind", ec.Export)
	return r
}

func upload(t *testing.T, r *gin.Engine, filename, kind, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("kind", kind))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sheets/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func uploadID(t *testing.T, r *gin.Engine, filename, kind, content string) string {
	t.Helper()
	w := upload(t, r, filename, kind, content)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var sheet struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sheet))
	require.NotEmpty(t, sheet.ID)
	return sheet.ID
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestUploadAndAnalyseScores(t *testing.T) {
	r := setupRouter(t)
	id := uploadID(t, r, "期中.csv", "scores", scoresCSV)

	w := get(r, "/api/sheets/"+id+"/subjects")
	require.Equal(t, http.StatusOK, w.Code)
	var summary service.SubjectSummary
	decode(t, w, &summary)
	assert.Equal(t, []service.SubjectAverage{{Subject: "语文", Average: 95}, {Subject: "数学", Average: 60}}, summary.Subjects)

	w = get(r, "/api/sheets/"+id+"/students/report?name=%E6%9D%8E%E5%9B%9B&id=2")
	require.Equal(t, http.StatusOK, w.Code)
	var report service.StudentReportResult
	decode(t, w, &report)
	require.Len(t, report.Report.Items, 1)
	assert.Equal(t, 90.0, report.Report.Total)
	assert.Equal(t, 2, report.Standing.Rank)

	w = get(r, "/api/sheets/"+id+"/overview")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"participants":2`)
}

func TestStudentReportErrors(t *testing.T) {
	r := setupRouter(t)
	id := uploadID(t, r, "期中.csv", "scores", scoresCSV)

	w := get(r, "/api/sheets/"+id+"/students/report?name=%E5%BC%A0%E4%B8%89")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/api/sheets/"+id+"/students/report?name=%E5%BC%A0%E4%B8%89&id=9")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, "/api/sheets/"+id+"/students/report?name=%E5%BC%A0%E4%B8%89&id=1&policy=zero")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/api/sheets/"+id+"/knowledge-points/cohort")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/api/sheets/missing/subjects")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnprocessableSheet(t *testing.T) {
	r := setupRouter(t)
	id := uploadID(t, r, "a.csv", "scores", "姓名,考号,备注\n张三,1,缺考\n")

	w := get(r, "/api/sheets/"+id+"/subjects")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	r := setupRouter(t)

	w := upload(t, r, "scores.pdf", "scores", scoresCSV)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, r, "scores.csv", "homework", scoresCSV)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestKnowledgeEndpoints(t *testing.T) {
	r := setupRouter(t)
	id := uploadID(t, r, "小分.csv", "knowledge", knowledgeCSV)

	w := get(r, "/api/sheets/"+id+"/knowledge-points/student?name=%E5%BC%A0%E4%B8%89&id=1")
	require.Equal(t, http.StatusOK, w.Code)
	var mastery struct {
		Points []struct {
			Point   string  `json:"point"`
			MyRatio float64 `json:"myRatio"`
		} `json:"points"`
	}
	decode(t, w, &mastery)
	require.Len(t, mastery.Points, 1)
	assert.Equal(t, 33.3, mastery.Points[0].MyRatio)

	w = get(r, "/api/sheets/"+id+"/knowledge-points/cohort")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"classRatio":65`)

	w = get(r, "/api/sheets/"+id+"/knowledge-points/students")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "李四")
}

func TestKnowledgeSheetWithNameColumnOnly(t *testing.T) {
	r := setupRouter(t)
	content := "name,Q1,Q2\n" +
		",algebra,algebra\n" +
		",10,10\n" +
		"Ann,5,10\n" +
		"Ben,8,2\n"
	id := uploadID(t, r, "names.csv", "knowledge", content)

	w := get(r, "/api/sheets/"+id+"/knowledge-points/students")
	require.Equal(t, http.StatusOK, w.Code)
	var students []struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
	decode(t, w, &students)
	require.Len(t, students, 2)
	assert.Equal(t, "Ann", students[0].Name)
	assert.Empty(t, students[0].ID)

	w = get(r, "/api/sheets/"+id+"/knowledge-points/student?name="+students[0].Name)
	require.Equal(t, http.StatusOK, w.Code)
	var mastery struct {
		Points []struct {
			Point   string  `json:"point"`
			MyRatio float64 `json:"myRatio"`
		} `json:"points"`
	}
	decode(t, w, &mastery)
	require.Len(t, mastery.Points, 1)
	assert.Equal(t, "algebra", mastery.Points[0].Point)
	assert.Equal(t, 75.0, mastery.Points[0].MyRatio)

	w = get(r, "/api/sheets/"+id+"/export/knowledge?name=Ann")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "knowledge_Ann.csv")

	w = get(r, "/api/sheets/"+id+"/knowledge-points/student")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/api/sheets/"+id+"/knowledge-points/student?name=Zoe")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadTooLargeIsRejected(t *testing.T) {
	r := setupRouter(t)
	big := scoresCSV + strings.Repeat("王五,3,80,90,170\n", (1<<20)/16+1)
	w := upload(t, r, "big.csv", "scores", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestExportCSV(t *testing.T) {
	r := setupRouter(t)
	id := uploadID(t, r, "期中.csv", "scores", scoresCSV)

	w := get(r, "/api/sheets/"+id+"/export/averages")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "\ufeff科目,班级平均分\n"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "averages.csv")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")

	w = get(r, "/api/sheets/"+id+"/export/student")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(r, "/api/sheets/"+id+"/export/pdf")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoteUnavailableIsBadGateway(t *testing.T) {
	r := setupRouter(t)

	body := strings.NewReader(`{"name":"月考","url":"https://example.com/a.csv"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/sheets/remote", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListAndDelete(t *testing.T) {
	r := setupRouter(t)
	id := uploadID(t, r, "期中.csv", "scores", scoresCSV)

	w := get(r, "/api/sheets?kind=scores")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id)

	req := httptest.NewRequest(http.MethodDelete, "/api/sheets/"+id, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/api/sheets/"+id)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
