package swap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	profileRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/profile/repository"
	realtime "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"
	skillRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/skill/repository"
	swapDto "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/dto"
	swapRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/repository"
	"github.com/raunak23427/mutual-skill-sync/internal/testutil"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	svc       *swapService
	requester entity.Profile
	recipient entity.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenTestDB(t)

	guitar := entity.Skill{Name: "Guitar", Category: "Music", IsApproved: true}
	if err := db.Create(&guitar).Error; err != nil {
		t.Fatalf("create skill: %v", err)
	}

	f := &fixture{db: db}
	f.requester = entity.Profile{ClerkID: "req", FullName: "Ann", Availability: "weekends", IsPublic: true, Status: entity.ProfileStatusActive}
	f.recipient = entity.Profile{ClerkID: "rec", FullName: "Bob", Availability: "weekends", IsPublic: true, Status: entity.ProfileStatusActive}
	for _, p := range []*entity.Profile{&f.requester, &f.recipient} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create profile: %v", err)
		}
	}
	offered := entity.UserSkillOffered{UserID: f.recipient.ID, SkillID: guitar.ID, ProficiencyLevel: entity.ProficiencyExpert}
	if err := db.Omit("Skill").Create(&offered).Error; err != nil {
		t.Fatalf("create offered: %v", err)
	}

	f.svc = NewSwapService(
		swapRepo.NewSwapRepository(db),
		profileRepo.NewProfileRepository(db),
		skillRepo.NewSkillRepository(db),
		nil,
		realtime.NewPublisher(nil),
		Options{RequestTTL: time.Hour},
	).(*swapService)
	return f
}

func (f *fixture) create(t *testing.T) *swapDto.SwapResponse {
	t.Helper()
	swap, err := f.svc.CreateSwap(context.Background(), f.requester.ID, swapDto.CreateSwapRequest{
		RecipientID: f.recipient.ID.String(),
	})
	if err != nil {
		t.Fatalf("create swap: %v", err)
	}
	return swap
}

func TestCreateSwapDefaults(t *testing.T) {
	f := newFixture(t)

	swap := f.create(t)
	if swap.Status != entity.SwapStatusPending {
		t.Fatalf("status = %q", swap.Status)
	}
	if swap.Message != entity.DefaultSwapMessage {
		t.Fatalf("message = %q", swap.Message)
	}
	if swap.ExpiresAt == nil || swap.ExpiresAt.Sub(swap.CreatedAt) < 59*time.Minute {
		t.Fatalf("expires_at = %v, created_at = %v", swap.ExpiresAt, swap.CreatedAt)
	}
}

func TestCreateSwapValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.CreateSwap(ctx, f.requester.ID, swapDto.CreateSwapRequest{RecipientID: f.requester.ID.String()}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("self request err = %v", err)
	}
	if _, err := f.svc.CreateSwap(ctx, f.requester.ID, swapDto.CreateSwapRequest{RecipientID: uuid.NewString()}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unknown recipient err = %v", err)
	}
	if _, err := f.svc.CreateSwap(ctx, f.requester.ID, swapDto.CreateSwapRequest{
		RecipientID:      f.recipient.ID.String(),
		RecipientSkillID: uuid.NewString(),
	}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unknown skill err = %v", err)
	}

	f.db.Model(&entity.Profile{}).Where("id = ?", f.recipient.ID).Update("status", entity.ProfileStatusBanned)
	if _, err := f.svc.CreateSwap(ctx, f.requester.ID, swapDto.CreateSwapRequest{RecipientID: f.recipient.ID.String()}); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("banned recipient err = %v", err)
	}
}

func TestIncomingAndOutgoingCarryCounterpart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t)

	incoming, err := f.svc.ListIncoming(ctx, f.recipient.ID)
	if err != nil {
		t.Fatalf("incoming: %v", err)
	}
	if len(incoming) != 1 || incoming[0].Requester == nil || incoming[0].Requester.FullName != "Ann" {
		t.Fatalf("incoming = %+v", incoming)
	}

	outgoing, err := f.svc.ListOutgoing(ctx, f.requester.ID)
	if err != nil {
		t.Fatalf("outgoing: %v", err)
	}
	if len(outgoing) != 1 || outgoing[0].Recipient == nil {
		t.Fatalf("outgoing = %+v", outgoing)
	}
	if got := outgoing[0].Recipient.SkillsOffered; len(got) != 1 || got[0] != "Guitar" {
		t.Fatalf("recipient skills = %v", got)
	}

	if none, _ := f.svc.ListIncoming(ctx, f.requester.ID); len(none) != 0 {
		t.Fatalf("requester has incoming %+v", none)
	}
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	swap := f.create(t)

	if _, err := f.svc.Complete(ctx, f.requester.ID, swap.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("complete pending err = %v", err)
	}
	if _, err := f.svc.Accept(ctx, f.requester.ID, swap.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("requester accept err = %v", err)
	}

	accepted, err := f.svc.Accept(ctx, f.recipient.ID, swap.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != entity.SwapStatusAccepted {
		t.Fatalf("status = %q", accepted.Status)
	}
	if err := f.svc.Delete(ctx, f.requester.ID, swap.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("delete accepted err = %v", err)
	}

	completed, err := f.svc.Complete(ctx, f.requester.ID, swap.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != entity.SwapStatusCompleted {
		t.Fatalf("status = %q", completed.Status)
	}
	if _, err := f.svc.Complete(ctx, f.recipient.ID, swap.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second complete err = %v", err)
	}

	var profiles []entity.Profile
	f.db.Find(&profiles)
	for _, p := range profiles {
		if p.TotalSwaps != 1 {
			t.Fatalf("%s total_swaps = %d", p.ClerkID, p.TotalSwaps)
		}
	}

	list, err := f.svc.ListCompleted(ctx, f.recipient.ID)
	if err != nil {
		t.Fatalf("completed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("completed = %+v", list)
	}
	if list[0].Partner.ID != f.requester.ID {
		t.Fatalf("partner = %s, want requester", list[0].Partner.ID)
	}
	if !list[0].CompletedAt.Equal(list[0].UpdatedAt) {
		t.Fatalf("completed_at %v != updated_at %v", list[0].CompletedAt, list[0].UpdatedAt)
	}

	mine, _ := f.svc.ListCompleted(ctx, f.requester.ID)
	if len(mine) != 1 || mine[0].Partner.ID != f.recipient.ID {
		t.Fatalf("requester completed = %+v", mine)
	}
}

func TestRejectAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rejected := f.create(t)
	if _, err := f.svc.Reject(ctx, f.recipient.ID, rejected.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.svc.Accept(ctx, f.recipient.ID, rejected.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("accept rejected err = %v", err)
	}

	pending := f.create(t)
	if err := f.svc.Delete(ctx, f.recipient.ID, pending.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("recipient delete err = %v", err)
	}
	if err := f.svc.Delete(ctx, f.requester.ID, pending.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Accept(ctx, f.recipient.ID, pending.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("accept deleted err = %v", err)
	}
}

func TestExpiredRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	swap := f.create(t)

	f.svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

	if _, err := f.svc.Accept(ctx, f.recipient.ID, swap.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("accept expired err = %v", err)
	}

	n, err := f.svc.ExpireStaleRequests(ctx)
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d", n)
	}

	var stored entity.SwapRequest
	f.db.First(&stored, "id = ?", swap.ID)
	if stored.Status != entity.SwapStatusRejected {
		t.Fatalf("status = %q", stored.Status)
	}

	if n, _ := f.svc.ExpireStaleRequests(ctx); n != 0 {
		t.Fatalf("second sweep expired %d", n)
	}
}

func TestExpiryWorkerStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	swap := f.create(t)
	f.svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.StartExpiryWorker(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var stored entity.SwapRequest
		f.db.First(&stored, "id = ?", swap.ID)
		if stored.Status == entity.SwapStatusRejected {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			<-done
			t.Fatal("worker did not expire the request")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
}
