package admin

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	adminDto "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/dto"
	adminRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/repository"
	realtime "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"
	"github.com/raunak23427/mutual-skill-sync/internal/testutil"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	"gorm.io/gorm"
)

var adminIdent = &identity.Identity{ID: "admin-1", Role: identity.RoleAdmin}

func setup(t *testing.T) (AdminService, *gorm.DB) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	return NewAdminService(adminRepo.NewAdminRepository(db), nil, realtime.NewPublisher(nil)), db
}

func createProfile(t *testing.T, db *gorm.DB, clerkID, name string) entity.Profile {
	t.Helper()
	p := entity.Profile{ClerkID: clerkID, FullName: name, Email: clerkID + "@example.com", Availability: "weekends", IsPublic: true, Status: entity.ProfileStatusActive}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func actions(t *testing.T, db *gorm.DB) []entity.AdminAction {
	t.Helper()
	var out []entity.AdminAction
	if err := db.Order("created_at ASC").Find(&out).Error; err != nil {
		t.Fatalf("load actions: %v", err)
	}
	return out
}

func TestUpdateUserStatusIsAudited(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	user := createProfile(t, db, "u1", "Ann")

	updated, err := svc.UpdateUserStatus(ctx, adminIdent, user.ID, entity.ProfileStatusBanned)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != entity.ProfileStatusBanned {
		t.Fatalf("status = %q", updated.Status)
	}

	logged := actions(t, db)
	if len(logged) != 1 {
		t.Fatalf("actions = %d", len(logged))
	}
	a := logged[0]
	if a.ActionType != entity.ActionUserBan || a.AdminID != "admin-1" || a.TargetID == nil || *a.TargetID != user.ID {
		t.Fatalf("action = %+v", a)
	}
	var details map[string]string
	if err := json.Unmarshal(a.Details, &details); err != nil {
		t.Fatalf("details: %v", err)
	}
	if details["from"] != "active" || details["to"] != "banned" {
		t.Fatalf("details = %v", details)
	}

	if _, err := svc.UpdateUserStatus(ctx, adminIdent, uuid.New(), entity.ProfileStatusActive); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
	if _, err := svc.UpdateUserStatus(ctx, adminIdent, user.ID, "gone"); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("bad status err = %v", err)
	}
}

func TestListUsersSearchMatchesWildcardsLiterally(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	createProfile(t, db, "ann", "Ann")
	createProfile(t, db, "bob", "Bob")
	createProfile(t, db, "fan", "100% Fan")

	tests := []struct {
		search string
		want   []string
	}{
		{"%", []string{"100% Fan"}},
		{"_", nil},
		{"ANN", []string{"Ann"}},
		{"b_b", nil},
	}
	for _, tt := range tests {
		got, err := svc.ListUsers(ctx, adminDto.UserFilter{Search: tt.search})
		if err != nil {
			t.Fatalf("ListUsers(%q): %v", tt.search, err)
		}
		var names []string
		for _, p := range got {
			names = append(names, p.FullName)
		}
		if strings.Join(names, ",") != strings.Join(tt.want, ",") {
			t.Errorf("ListUsers(%q) = %v, want %v", tt.search, names, tt.want)
		}
	}
}

func TestAdminCannotTargetSelf(t *testing.T) {
	svc, db := setup(t)
	self := createProfile(t, db, adminIdent.ID, "Root")

	if _, err := svc.UpdateUserStatus(context.Background(), adminIdent, self.ID, entity.ProfileStatusBanned); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("self ban err = %v", err)
	}
	if err := svc.DeleteUser(context.Background(), adminIdent, self.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("self delete err = %v", err)
	}
	if n := len(actions(t, db)); n != 0 {
		t.Fatalf("refused actions were logged: %d", n)
	}
}

func TestDeleteUserRemovesDependents(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	ann := createProfile(t, db, "ann", "Ann")
	bob := createProfile(t, db, "bob", "Bob")

	skill := entity.Skill{Name: "Chess", IsApproved: true}
	db.Create(&skill)
	db.Omit("Skill").Create(&entity.UserSkillOffered{UserID: ann.ID, SkillID: skill.ID, ProficiencyLevel: entity.ProficiencyExpert})
	swap := entity.SwapRequest{RequesterID: ann.ID, RecipientID: bob.ID, Message: "hi", Status: entity.SwapStatusCompleted}
	db.Omit("Requester", "Recipient", "RequesterSkill", "RecipientSkill").Create(&swap)
	db.Omit("SwapSession", "Reviewer", "Reviewee").Create(&entity.Feedback{SwapSessionID: swap.ID, ReviewerID: bob.ID, RevieweeID: ann.ID, Rating: 5, IsPublic: true})

	if err := svc.DeleteUser(ctx, adminIdent, ann.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for name, model := range map[string]any{
		"profiles": &entity.Profile{},
		"offered":  &entity.UserSkillOffered{},
		"swaps":    &entity.SwapRequest{},
		"feedback": &entity.Feedback{},
	} {
		var count int64
		db.Model(model).Count(&count)
		want := int64(0)
		if name == "profiles" {
			want = 1
		}
		if count != want {
			t.Errorf("%s count = %d, want %d", name, count, want)
		}
	}

	logged := actions(t, db)
	if len(logged) != 1 || logged[0].ActionType != entity.ActionUserDelete {
		t.Fatalf("actions = %+v", logged)
	}
}

func TestSkillModeration(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	added, err := svc.AddSkill(ctx, adminIdent, adminDto.CreateSkillRequest{Name: "Pottery"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !added.IsApproved || added.Category != entity.DefaultSkillCategory {
		t.Fatalf("added = %+v", added)
	}
	if _, err := svc.AddSkill(ctx, adminIdent, adminDto.CreateSkillRequest{Name: "pottery"}); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate err = %v", err)
	}

	pending := entity.Skill{Name: "Juggling", IsApproved: false}
	db.Create(&pending)
	if err := svc.ModerateSkill(ctx, adminIdent, pending.ID, adminDto.ModerateApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	var stored entity.Skill
	db.First(&stored, "id = ?", pending.ID)
	if !stored.IsApproved {
		t.Fatal("skill not approved")
	}

	spam := entity.Skill{Name: "Spam", IsApproved: false}
	db.Create(&spam)
	user := createProfile(t, db, "u1", "Ann")
	db.Omit("Skill").Create(&entity.UserSkillWanted{UserID: user.ID, SkillID: spam.ID, Urgency: entity.UrgencyLow})
	if err := svc.ModerateSkill(ctx, adminIdent, spam.ID, adminDto.ModerateReject); err != nil {
		t.Fatalf("reject: %v", err)
	}
	var count int64
	db.Model(&entity.Skill{}).Where("id = ?", spam.ID).Count(&count)
	if count != 0 {
		t.Fatal("rejected skill still stored")
	}
	db.Model(&entity.UserSkillWanted{}).Count(&count)
	if count != 0 {
		t.Fatal("wanted link to rejected skill survived")
	}

	if err := svc.ModerateSkill(ctx, adminIdent, uuid.New(), adminDto.ModerateApprove); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing skill err = %v", err)
	}

	var types []string
	for _, a := range actions(t, db) {
		types = append(types, a.ActionType)
	}
	want := []string{entity.ActionSkillAdd, entity.ActionSkillApprove, entity.ActionSkillReject}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("actions = %v, want %v", types, want)
	}
}

func TestStats(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	ann := createProfile(t, db, "ann", "Ann")
	bob := createProfile(t, db, "bob", "Bob")
	db.Model(&entity.Profile{}).Where("id = ?", bob.ID).Update("status", entity.ProfileStatusBanned)

	for _, status := range []string{entity.SwapStatusPending, entity.SwapStatusPending, entity.SwapStatusCompleted, entity.SwapStatusRejected} {
		sw := entity.SwapRequest{RequesterID: ann.ID, RecipientID: bob.ID, Message: "m", Status: status}
		db.Omit("Requester", "Recipient", "RequesterSkill", "RecipientSkill").Create(&sw)
		if status == entity.SwapStatusCompleted {
			db.Omit("SwapSession", "Reviewer", "Reviewee").Create(&entity.Feedback{SwapSessionID: sw.ID, ReviewerID: ann.ID, RevieweeID: bob.ID, Rating: 5})
			db.Omit("SwapSession", "Reviewer", "Reviewee").Create(&entity.Feedback{SwapSessionID: sw.ID, ReviewerID: bob.ID, RevieweeID: ann.ID, Rating: 4})
		}
	}

	swaps, err := svc.SwapStats(ctx)
	if err != nil {
		t.Fatalf("swap stats: %v", err)
	}
	if *swaps != (adminDto.SwapStats{Total: 4, Pending: 2, Completed: 1, Rejected: 1}) {
		t.Fatalf("swap stats = %+v", swaps)
	}

	stats, err := svc.PlatformStats(ctx)
	if err != nil {
		t.Fatalf("platform stats: %v", err)
	}
	if stats.TotalUsers != 2 || stats.ActiveUsers != 1 || stats.BannedUsers != 1 {
		t.Fatalf("user stats = %+v", stats)
	}
	if stats.TotalSwaps != 4 || stats.CompletedSwaps != 1 || stats.TotalFeedback != 2 || stats.AverageRating != 4.5 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestMessagesAndActionLog(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	msg, err := svc.SendMessage(ctx, adminIdent, " Maintenance <script>x</script>tonight ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Message != "Maintenance tonight" {
		t.Fatalf("message = %q", msg.Message)
	}
	if _, err := svc.SendMessage(ctx, adminIdent, "   "); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("empty message err = %v", err)
	}

	messages, err := svc.ListMessages(ctx, 0)
	if err != nil || len(messages) != 1 {
		t.Fatalf("messages = %+v, %v", messages, err)
	}

	logged, err := svc.ListActions(ctx, 10)
	if err != nil {
		t.Fatalf("actions: %v", err)
	}
	if len(logged) != 1 || logged[0].ActionType != entity.ActionGlobalMessage || *logged[0].TargetID != msg.ID {
		t.Fatalf("actions = %+v", logged)
	}
}

func TestGenerateReport(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()
	createProfile(t, db, "u1", "Smith, Ann")

	report, err := svc.GenerateReport(ctx, adminIdent, adminDto.ReportUsers)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Filename() != "users_report.csv" {
		t.Fatalf("filename = %q", report.Filename())
	}

	lines := strings.Split(report.Encode(), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if lines[0] != strings.Join(userColumns, ",") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], ",Smith; Ann,") {
		t.Fatalf("row = %q", lines[1])
	}

	logged := actions(t, db)
	if len(logged) != 1 || logged[0].ActionType != entity.ActionReportDownload {
		t.Fatalf("actions = %+v", logged)
	}

	if _, err := svc.GenerateReport(ctx, nil, adminDto.ReportFeedback); err != nil {
		t.Fatalf("unaudited report: %v", err)
	}
	if n := len(actions(t, db)); n != 1 {
		t.Fatalf("unaudited report logged an action")
	}
	if _, err := svc.GenerateReport(ctx, adminIdent, "payments"); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("unknown report err = %v", err)
	}
}
