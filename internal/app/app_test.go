package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/testutil"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	return New(testutil.Config(t), db, nil), db
}

func do(t *testing.T, a *App, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHealth(t *testing.T) {
	a, _ := newTestApp(t)
	w, _ := do(t, a, httptest.NewRequest(http.MethodGet, "/api/health", nil), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestEnrollAndSubmitFlow(t *testing.T) {
	a, db := newTestApp(t)
	ctx := testutil.Ctx(t)
	user := testutil.SeedUser(t, ctx, db, "alice", model.RoleLearner)
	course := testutil.SeedCourse(t, ctx, db, "go", 5)
	q1 := testutil.SeedQuestion(t, ctx, db, course.ID, 50, true, true, false)
	q2 := testutil.SeedQuestion(t, ctx, db, course.ID, 30, false, true)
	token := testutil.Token(t, user)

	base := fmt.Sprintf("/api/courses/%d", course.ID)

	// 未报名提交
	w, _ := do(t, a, formRequest(base+"/submit", url.Values{"choice_1": {fmt.Sprint(q1.Choices[0].ID)}}), token)
	if w.Code != http.StatusForbidden {
		t.Fatalf("unenrolled submit status = %d, want 403", w.Code)
	}

	// 游客报名为空操作
	w, env := do(t, a, httptest.NewRequest(http.MethodPost, base+"/enroll", nil), "")
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"enrolled":false`) {
		t.Fatalf("anonymous enroll: %d %s", w.Code, w.Body.String())
	}

	w, env = do(t, a, httptest.NewRequest(http.MethodPost, base+"/enroll", nil), token)
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"enrolled":true`) {
		t.Fatalf("enroll: %d %s", w.Code, w.Body.String())
	}
	w, env = do(t, a, httptest.NewRequest(http.MethodPost, base+"/enroll", nil), token)
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), `"enrolled":false`) {
		t.Fatalf("repeat enroll: %d %s", w.Code, w.Body.String())
	}

	var c model.Course
	if err := db.First(&c, course.ID).Error; err != nil {
		t.Fatalf("load course: %v", err)
	}
	if c.TotalEnrollment != 6 {
		t.Fatalf("total enrollment = %d, want 6", c.TotalEnrollment)
	}

	// 表单提交：q1 全对，q2 选错
	form := url.Values{
		"choice_1": {fmt.Sprint(q1.Choices[0].ID)},
		"choice_2": {fmt.Sprint(q1.Choices[1].ID)},
		"choice_3": {fmt.Sprint(q2.Choices[0].ID)},
		"choice_4": {"99999"},
	}
	w, env = do(t, a, formRequest(base+"/submit", form), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("form submit status = %d, body = %s", w.Code, w.Body.String())
	}
	var created struct {
		SubmissionID uint   `json:"submissionId"`
		ResultURL    string `json:"resultUrl"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode submit data: %v", err)
	}

	w, env = do(t, a, httptest.NewRequest(http.MethodGet, created.ResultURL, nil), token)
	if w.Code != http.StatusOK {
		t.Fatalf("result status = %d, body = %s", w.Code, w.Body.String())
	}
	var result struct {
		Grade         int    `json:"grade"`
		PossibleGrade int    `json:"possibleGrade"`
		SelectedIDs   []uint `json:"selectedIds"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Grade != 50 || result.PossibleGrade != 80 {
		t.Fatalf("grade = %d/%d, want 50/80", result.Grade, result.PossibleGrade)
	}
	if len(result.SelectedIDs) != 3 {
		t.Fatalf("selected ids = %v, want 3 known choices", result.SelectedIDs)
	}

	// JSON 提交
	w, env = do(t, a, jsonRequest(t, http.MethodPost, base+"/submit", map[string]interface{}{
		"choiceIds": []uint{q1.Choices[0].ID, q1.Choices[1].ID, q2.Choices[1].ID},
	}), token)
	if w.Code != http.StatusCreated {
		t.Fatalf("json submit status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode submit data: %v", err)
	}
	_, env = do(t, a, httptest.NewRequest(http.MethodGet, created.ResultURL, nil), token)
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Grade != 80 {
		t.Fatalf("json submission grade = %d, want 80", result.Grade)
	}

	// 其他学员看不到
	bob := testutil.SeedUser(t, ctx, db, "bob", model.RoleLearner)
	w, _ = do(t, a, httptest.NewRequest(http.MethodGet, created.ResultURL, nil), testutil.Token(t, bob))
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign result status = %d, want 404", w.Code)
	}
}

func TestSubmitMalformedAnswer(t *testing.T) {
	a, db := newTestApp(t)
	ctx := testutil.Ctx(t)
	user := testutil.SeedUser(t, ctx, db, "alice", model.RoleLearner)
	course := testutil.SeedCourse(t, ctx, db, "go", 0)
	testutil.SeedEnrollment(t, ctx, db, user.ID, course.ID)

	target := fmt.Sprintf("/api/courses/%d/submit", course.ID)
	w, _ := do(t, a, formRequest(target, url.Values{"choice_1": {"abc"}}), testutil.Token(t, user))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var n int64
	if err := db.Model(&model.Submission{}).Count(&n).Error; err != nil {
		t.Fatalf("count submissions: %v", err)
	}
	if n != 0 {
		t.Fatalf("malformed request must not create a submission, count = %d", n)
	}
}

func TestSubmitMultipartForm(t *testing.T) {
	a, db := newTestApp(t)
	ctx := testutil.Ctx(t)
	user := testutil.SeedUser(t, ctx, db, "alice", model.RoleLearner)
	course := testutil.SeedCourse(t, ctx, db, "go", 0)
	q := testutil.SeedQuestion(t, ctx, db, course.ID, 50, true)
	testutil.SeedEnrollment(t, ctx, db, user.ID, course.ID)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("choice_1", fmt.Sprint(q.Choices[0].ID)); err != nil {
		t.Fatalf("write field: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/courses/%d/submit", course.ID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, _ := do(t, a, req, testutil.Token(t, user))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	a, db := newTestApp(t)
	ctx := testutil.Ctx(t)
	course := testutil.SeedCourse(t, ctx, db, "go", 0)

	w, _ := do(t, a, formRequest(fmt.Sprintf("/api/courses/%d/submit", course.ID), url.Values{}), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("submit without token = %d, want 401", w.Code)
	}
	w, _ = do(t, a, httptest.NewRequest(http.MethodGet, "/api/profile", nil), "garbage")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("profile with bad token = %d, want 401", w.Code)
	}
	w, _ = do(t, a, httptest.NewRequest(http.MethodGet, "/api/courses/9999", nil), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing course = %d, want 404", w.Code)
	}
	w, _ = do(t, a, httptest.NewRequest(http.MethodGet, "/api/courses/abc", nil), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad course id = %d, want 400", w.Code)
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	a, _ := newTestApp(t)

	w, _ := do(t, a, jsonRequest(t, http.MethodPost, "/api/register", map[string]string{
		"username": "alice", "password": "password123",
	}), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}
	w, _ = do(t, a, jsonRequest(t, http.MethodPost, "/api/register", map[string]string{
		"username": "alice", "password": "password123",
	}), "")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", w.Code)
	}

	w, _ = do(t, a, jsonRequest(t, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "nope-nope",
	}), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", w.Code)
	}

	w, env := do(t, a, jsonRequest(t, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "password123",
	}), "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &login); err != nil || login.Token == "" {
		t.Fatalf("decode login: %v %s", err, env.Data)
	}

	w, _ = do(t, a, httptest.NewRequest(http.MethodGet, "/api/profile", nil), login.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("profile status = %d", w.Code)
	}
	w, _ = do(t, a, httptest.NewRequest(http.MethodPost, "/api/logout", nil), login.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	w, _ = do(t, a, httptest.NewRequest(http.MethodGet, "/api/profile", nil), login.Token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token status = %d, want 401", w.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	a, db := newTestApp(t)
	ctx := testutil.Ctx(t)
	learner := testutil.SeedUser(t, ctx, db, "alice", model.RoleLearner)
	admin := testutil.SeedUser(t, ctx, db, "root", model.RoleAdmin)
	adminToken := testutil.Token(t, admin)

	w, _ := do(t, a, jsonRequest(t, http.MethodPost, "/api/admin/courses", map[string]string{"name": "go"}), testutil.Token(t, learner))
	if w.Code != http.StatusForbidden {
		t.Fatalf("learner admin access = %d, want 403", w.Code)
	}

	w, env := do(t, a, jsonRequest(t, http.MethodPost, "/api/admin/courses", map[string]string{"name": "go", "pubDate": "2026-01-02"}), adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create course = %d, body = %s", w.Code, w.Body.String())
	}
	var course model.Course
	if err := json.Unmarshal(env.Data, &course); err != nil {
		t.Fatalf("decode course: %v", err)
	}

	w, _ = do(t, a, jsonRequest(t, http.MethodPost, "/api/admin/courses", map[string]string{"name": "bad", "pubDate": "tomorrow"}), adminToken)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid date = %d, want 400", w.Code)
	}

	w, env = do(t, a, jsonRequest(t, http.MethodPost, fmt.Sprintf("/api/admin/courses/%d/questions", course.ID), map[string]interface{}{
		"content": "pick",
		"choices": []map[string]interface{}{{"content": "yes", "isCorrect": true}, {"content": "no"}},
	}), adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create question = %d, body = %s", w.Code, w.Body.String())
	}
	var q model.Question
	if err := json.Unmarshal(env.Data, &q); err != nil {
		t.Fatalf("decode question: %v", err)
	}
	if len(q.Choices) != 2 {
		t.Fatalf("choices = %d, want 2", len(q.Choices))
	}

	w, _ = do(t, a, jsonRequest(t, http.MethodPatch, fmt.Sprintf("/api/admin/choices/%d", q.Choices[1].ID), map[string]bool{"isCorrect": true}), adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("update choice = %d, body = %s", w.Code, w.Body.String())
	}

	w, env = do(t, a, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/admin/questions/%d/choices", q.ID), nil), adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("list choices = %d, body = %s", w.Code, w.Body.String())
	}
	var listed []model.Choice
	if err := json.Unmarshal(env.Data, &listed); err != nil {
		t.Fatalf("decode choices: %v", err)
	}
	if len(listed) != 2 || !listed[0].IsCorrect || !listed[1].IsCorrect {
		t.Fatalf("choices = %+v, want both correct after update", listed)
	}

	w, _ = do(t, a, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/admin/submissions?courseId=%d", course.ID), nil), adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("list submissions = %d", w.Code)
	}

	w, _ = do(t, a, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", course.ID), nil), adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("delete course = %d", w.Code)
	}
	w, _ = do(t, a, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/admin/courses/%d", course.ID), nil), adminToken)
	if w.Code != http.StatusNotFound {
		t.Fatalf("delete missing course = %d, want 404", w.Code)
	}
}

func TestUploadCourseImage(t *testing.T) {
	a, db := newTestApp(t)
	ctx := testutil.Ctx(t)
	admin := testutil.SeedUser(t, ctx, db, "root", model.RoleAdmin)
	course := testutil.SeedCourse(t, ctx, db, "go", 0)

	upload := func(name string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("image", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(content)
		mw.Close()
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/admin/courses/%d/image", course.ID), &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w, _ := do(t, a, req, testutil.Token(t, admin))
		return w
	}

	// 最小 PNG 文件头
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
	if w := upload("cover.png", png); w.Code != http.StatusOK {
		t.Fatalf("upload png = %d, body = %s", w.Code, w.Body.String())
	}
	var c model.Course
	if err := db.First(&c, course.ID).Error; err != nil {
		t.Fatalf("load course: %v", err)
	}
	if !strings.HasPrefix(c.Image, "/uploads/course_images/") {
		t.Fatalf("image url = %q", c.Image)
	}

	if w := upload("notes.txt", []byte("hello")); w.Code != http.StatusBadRequest {
		t.Fatalf("upload txt = %d, want 400", w.Code)
	}
	if w := upload("fake.png", []byte("plain text pretending")); w.Code != http.StatusBadRequest {
		t.Fatalf("upload fake png = %d, want 400", w.Code)
	}
}
