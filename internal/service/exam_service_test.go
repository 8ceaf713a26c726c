package service

import (
	"errors"
	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/testutil"
	"onlinecourse_backend/internal/util"
	"testing"
)

func TestSubmit_NotEnrolled(t *testing.T) {
	ctx := testutil.Ctx(t)
	env := newTestEnv(t)
	user := testutil.SeedUser(t, ctx, env.db, "alice", model.RoleLearner)
	course := testutil.SeedCourse(t, ctx, env.db, "go", 0)

	_, err := env.exam.Submit(ctx, user.ID, course.ID, SubmitExamRequest{})
	if !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
}

func TestSubmit_MissingCourse(t *testing.T) {
	ctx := testutil.Ctx(t)
	env := newTestEnv(t)
	user := testutil.SeedUser(t, ctx, env.db, "alice", model.RoleLearner)

	_, err := env.exam.Submit(ctx, user.ID, 404, SubmitExamRequest{})
	if !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestSubmit_UnknownChoiceIgnored(t *testing.T) {
	ctx := testutil.Ctx(t)
	env := newTestEnv(t)
	user := testutil.SeedUser(t, ctx, env.db, "alice", model.RoleLearner)
	course := testutil.SeedCourse(t, ctx, env.db, "go", 0)
	q := testutil.SeedQuestion(t, ctx, env.db, course.ID, 50, true, false)
	testutil.SeedEnrollment(t, ctx, env.db, user.ID, course.ID)

	sub, err := env.exam.Submit(ctx, user.ID, course.ID, SubmitExamRequest{
		ChoiceIDs: []uint{q.Choices[0].ID, 9999, q.Choices[0].ID},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	result, err := env.exam.Result(ctx, Viewer{UserID: user.ID, Role: model.RoleLearner}, course.ID, sub.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if len(result.SelectedIDs) != 1 || result.SelectedIDs[0] != q.Choices[0].ID {
		t.Fatalf("selected ids = %v, want [%d]", result.SelectedIDs, q.Choices[0].ID)
	}
	if result.Grade != 50 || result.PossibleGrade != 50 {
		t.Fatalf("grade = %d/%d, want 50/50", result.Grade, result.PossibleGrade)
	}
}

func TestResult_TotalsAndPerQuestion(t *testing.T) {
	ctx := testutil.Ctx(t)
	env := newTestEnv(t)
	user := testutil.SeedUser(t, ctx, env.db, "alice", model.RoleLearner)
	course := testutil.SeedCourse(t, ctx, env.db, "go", 0)
	q1 := testutil.SeedQuestion(t, ctx, env.db, course.ID, 50, true, true, false)
	q2 := testutil.SeedQuestion(t, ctx, env.db, course.ID, 30, false, true)
	testutil.SeedEnrollment(t, ctx, env.db, user.ID, course.ID)

	tests := []struct {
		name  string
		ids   []uint
		grade int
	}{
		{"both correct", []uint{q1.Choices[0].ID, q1.Choices[1].ID, q2.Choices[1].ID}, 80},
		{"q1 partial", []uint{q1.Choices[0].ID, q1.Choices[2].ID, q2.Choices[1].ID}, 30},
		{"select everything", []uint{q1.Choices[0].ID, q1.Choices[1].ID, q1.Choices[2].ID, q2.Choices[0].ID, q2.Choices[1].ID}, 80},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := env.exam.Submit(ctx, user.ID, course.ID, SubmitExamRequest{ChoiceIDs: tt.ids})
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			result, err := env.exam.Result(ctx, Viewer{UserID: user.ID, Role: model.RoleLearner}, course.ID, sub.ID)
			if err != nil {
				t.Fatalf("Result: %v", err)
			}
			if result.Grade != tt.grade {
				t.Fatalf("grade = %d, want %d", result.Grade, tt.grade)
			}
			if result.PossibleGrade != 80 {
				t.Fatalf("possible = %d, want 80", result.PossibleGrade)
			}
			if len(result.QuestionResults) != 2 {
				t.Fatalf("question results = %d, want 2", len(result.QuestionResults))
			}
		})
	}
}

func TestResult_ReflectsCurrentChoiceFlags(t *testing.T) {
	ctx := testutil.Ctx(t)
	env := newTestEnv(t)
	user := testutil.SeedUser(t, ctx, env.db, "alice", model.RoleLearner)
	course := testutil.SeedCourse(t, ctx, env.db, "go", 0)
	q := testutil.SeedQuestion(t, ctx, env.db, course.ID, 50, true, false)
	testutil.SeedEnrollment(t, ctx, env.db, user.ID, course.ID)

	sub, err := env.exam.Submit(ctx, user.ID, course.ID, SubmitExamRequest{ChoiceIDs: []uint{q.Choices[0].ID}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	viewer := Viewer{UserID: user.ID, Role: model.RoleLearner}

	before, err := env.exam.Result(ctx, viewer, course.ID, sub.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if before.Grade != 50 {
		t.Fatalf("grade before edit = %d, want 50", before.Grade)
	}

	// 把第二个选项也标为正确，已有提交随之失分
	correct := true
	if _, err := env.admin.UpdateChoice(ctx, q.Choices[1].ID, ChoiceUpdateRequest{IsCorrect: &correct}); err != nil {
		t.Fatalf("UpdateChoice: %v", err)
	}

	after, err := env.exam.Result(ctx, viewer, course.ID, sub.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if after.Grade != 0 {
		t.Fatalf("grade after edit = %d, want 0", after.Grade)
	}
}

func TestResult_Visibility(t *testing.T) {
	ctx := testutil.Ctx(t)
	env := newTestEnv(t)
	alice := testutil.SeedUser(t, ctx, env.db, "alice", model.RoleLearner)
	bob := testutil.SeedUser(t, ctx, env.db, "bob", model.RoleLearner)
	teacher := testutil.SeedUser(t, ctx, env.db, "teacher", model.RoleInstructor)
	course := testutil.SeedCourse(t, ctx, env.db, "go", 0)
	other := testutil.SeedCourse(t, ctx, env.db, "rust", 0)
	testutil.SeedQuestion(t, ctx, env.db, course.ID, 50, true)
	testutil.SeedEnrollment(t, ctx, env.db, alice.ID, course.ID)

	sub, err := env.exam.Submit(ctx, alice.ID, course.ID, SubmitExamRequest{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := env.exam.Result(ctx, Viewer{UserID: bob.ID, Role: model.RoleLearner}, course.ID, sub.ID); !errors.Is(err, util.ErrSubmissionNotFound) {
		t.Fatalf("other learner: expected ErrSubmissionNotFound, got %v", err)
	}
	if _, err := env.exam.Result(ctx, Viewer{UserID: teacher.ID, Role: model.RoleInstructor}, course.ID, sub.ID); err != nil {
		t.Fatalf("instructor should see submission: %v", err)
	}
	if _, err := env.exam.Result(ctx, Viewer{UserID: alice.ID, Role: model.RoleLearner}, other.ID, sub.ID); !errors.Is(err, util.ErrSubmissionNotFound) {
		t.Fatalf("wrong course: expected ErrSubmissionNotFound, got %v", err)
	}
	if _, err := env.exam.Result(ctx, Viewer{UserID: alice.ID, Role: model.RoleLearner}, course.ID, 9999); !errors.Is(err, util.ErrSubmissionNotFound) {
		t.Fatalf("missing submission: expected ErrSubmissionNotFound, got %v", err)
	}
	if _, err := env.exam.Result(ctx, Viewer{UserID: alice.ID, Role: model.RoleLearner}, 9999, sub.ID); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("missing course: expected ErrCourseNotFound, got %v", err)
	}
}

func TestCourseDetail_HidesCorrectness(t *testing.T) {
	ctx := testutil.Ctx(t)
	env := newTestEnv(t)
	user := testutil.SeedUser(t, ctx, env.db, "alice", model.RoleLearner)
	course := testutil.SeedCourse(t, ctx, env.db, "go", 0)
	testutil.SeedLesson(t, ctx, env.db, course.ID, "b", 1)
	testutil.SeedLesson(t, ctx, env.db, course.ID, "a", 0)
	testutil.SeedQuestion(t, ctx, env.db, course.ID, 50, true, false)
	testutil.SeedEnrollment(t, ctx, env.db, user.ID, course.ID)

	detail, err := env.course.CourseDetail(ctx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("CourseDetail: %v", err)
	}
	if !detail.IsEnrolled {
		t.Fatalf("expected enrolled")
	}
	if len(detail.Lessons) != 2 || detail.Lessons[0].Title != "a" {
		t.Fatalf("unexpected lessons: %+v", detail.Lessons)
	}
	if len(detail.Questions) != 1 || len(detail.Questions[0].Choices) != 2 {
		t.Fatalf("unexpected questions: %+v", detail.Questions)
	}

	anon, err := env.course.CourseDetail(ctx, 0, course.ID)
	if err != nil {
		t.Fatalf("CourseDetail anonymous: %v", err)
	}
	if anon.IsEnrolled {
		t.Fatalf("anonymous viewer should not be enrolled")
	}

	if _, err := env.course.CourseDetail(ctx, user.ID, 9999); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestListCourses_MarksEnrollment(t *testing.T) {
	ctx := testutil.Ctx(t)
	env := newTestEnv(t)
	user := testutil.SeedUser(t, ctx, env.db, "alice", model.RoleLearner)
	popular := testutil.SeedCourse(t, ctx, env.db, "popular", 10)
	testutil.SeedCourse(t, ctx, env.db, "quiet", 1)
	testutil.SeedEnrollment(t, ctx, env.db, user.ID, popular.ID)

	items, err := env.course.ListCourses(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ID != popular.ID || !items[0].IsEnrolled {
		t.Fatalf("first item should be the enrolled popular course: %+v", items[0])
	}
	if items[1].IsEnrolled {
		t.Fatalf("second course should not be enrolled")
	}
}
