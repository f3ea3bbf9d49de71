package template

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carebridge/carebridge/internal/domain/auditlog"
	"github.com/carebridge/carebridge/internal/domain/fieldtype"
	"github.com/carebridge/carebridge/internal/platform/auth"
)

// -- Mock Repository --

type mockTemplateRepo struct {
	store map[uuid.UUID]*Template
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{store: make(map[uuid.UUID]*Template)}
}

func cloneTemplate(t *Template) *Template {
	cp := *t
	cp.Sections = CloneSections(t.Sections)
	return &cp
}

func (m *mockTemplateRepo) Create(_ context.Context, t *Template) error {
	t.ID = uuid.New()
	m.store[t.ID] = cloneTemplate(t)
	return nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id uuid.UUID) (*Template, error) {
	t, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTemplate(t), nil
}

func (m *mockTemplateRepo) Update(_ context.Context, t *Template, prevVersion int, prevStatus string) error {
	stored, ok := m.store[t.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != prevVersion || stored.Status != prevStatus {
		return ErrStaleVersion
	}
	m.store[t.ID] = cloneTemplate(t)
	return nil
}

func (m *mockTemplateRepo) List(_ context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Template, int, error) {
	var r []*Template
	for _, t := range m.store {
		if t.OrgID == orgID && (status == "" || t.Status == status) {
			r = append(r, cloneTemplate(t))
		}
	}
	return r, len(r), nil
}

func (m *mockTemplateRepo) ListEnabled(_ context.Context, orgID uuid.UUID) ([]*Template, error) {
	var r []*Template
	for _, t := range m.store {
		if t.OrgID == orgID && t.Status == StatusActive && t.IsEnabled {
			r = append(r, cloneTemplate(t))
		}
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Name < r[j].Name })
	return r, nil
}

// -- Mock Audit Recorder --

type mockRecorder struct {
	events []auditlog.Event
}

func (m *mockRecorder) Record(_ context.Context, e auditlog.Event) error {
	m.events = append(m.events, e)
	return nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func newTestService() (*Service, *mockRecorder) {
	rec := &mockRecorder{}
	return NewService(newMockTemplateRepo(), rec, testLogger()), rec
}

func testActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Roles: []string{auth.RoleCoordinator}, OrgID: uuid.New()}
}

func draftSections() []Section {
	return []Section{
		{ID: "s1", Title: "Wellbeing", Order: 1, Fields: []Field{
			{ID: "f1", Label: "Mood", Type: fieldtype.SingleChoice, Required: true, Order: 1,
				Config: fieldtype.Config{Options: []string{"Low", "Medium", "High"}}},
			{ID: "f2", Label: "Notes", Type: fieldtype.TextLong, Order: 2},
		}},
	}
}

// -- Service Tests --

func TestCreateDraft(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()

	tpl, err := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "Daily Visit", Sections: draftSections()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tpl.Status != StatusDraft {
		t.Errorf("expected DRAFT, got %q", tpl.Status)
	}
	if tpl.Version != 1 {
		t.Errorf("expected version 1, got %d", tpl.Version)
	}
	if !tpl.IsEnabled {
		t.Error("expected new draft to be enabled")
	}
	if tpl.OrgID != actor.OrgID {
		t.Error("expected draft to belong to the actor's organization")
	}
}

func TestCreateDraft_RequiresName(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.CreateDraft(context.Background(), testActor(), CreateInput{}); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestGet_OtherOrgIsNotFound(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T"})

	other := testActor() // different org
	if _, err := svc.Get(context.Background(), other, tpl.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign organization, got %v", err)
	}
}

func TestPublish(t *testing.T) {
	svc, rec := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})

	got, err := svc.Publish(context.Background(), actor, tpl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusActive {
		t.Errorf("expected ACTIVE, got %q", got.Status)
	}
	if got.Version != 1 {
		t.Errorf("expected version 1, got %d", got.Version)
	}
	if len(rec.events) != 1 || rec.events[0].Action != auditlog.ActionTemplatePublished {
		t.Errorf("expected one publish audit event, got %+v", rec.events)
	}
}

func TestPublish_EmptyTemplate(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T"})

	_, err := svc.Publish(context.Background(), actor, tpl.ID)
	var rejected *PublishRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected PublishRejectedError, got %v", err)
	}
}

func TestPublish_EmptySection(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{
		Name:     "T",
		Sections: []Section{{ID: "s1", Title: "Empty", Order: 1}},
	})

	_, err := svc.Publish(context.Background(), actor, tpl.ID)
	var rejected *PublishRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected PublishRejectedError, got %v", err)
	}
}

func TestPublish_DuplicateFieldIDs(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{
		Name: "T",
		Sections: []Section{
			{ID: "s1", Order: 1, Fields: []Field{{ID: "f1", Type: fieldtype.TextShort}}},
			{ID: "s2", Order: 2, Fields: []Field{{ID: "f1", Type: fieldtype.Number}}},
		},
	})

	_, err := svc.Publish(context.Background(), actor, tpl.ID)
	var rejected *PublishRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected PublishRejectedError, got %v", err)
	}
}

func TestPublish_UnknownFieldType(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{
		Name: "T",
		Sections: []Section{
			{ID: "s1", Order: 1, Fields: []Field{{ID: "f1", Type: fieldtype.Kind("HOLOGRAM")}}},
		},
	})

	if _, err := svc.Publish(context.Background(), actor, tpl.ID); err == nil {
		t.Fatal("expected rejection for unknown field type")
	}
}

func TestPublish_NotDraft(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Publish(context.Background(), actor, tpl.ID)

	_, err := svc.Publish(context.Background(), actor, tpl.ID)
	var conflict *EditConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected EditConflictError, got %v", err)
	}
}

func TestUpdate_DraftStructure(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})

	sections := draftSections()
	sections[0].Fields = append(sections[0].Fields, Field{ID: "f3", Label: "Extra", Type: fieldtype.YesNo, Order: 3})
	got, err := svc.Update(context.Background(), actor, tpl.ID, UpdateInput{Sections: sections})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Sections[0].Fields) != 3 {
		t.Errorf("expected 3 fields, got %d", len(got.Sections[0].Fields))
	}
}

func TestUpdate_ActiveCosmeticAccepted(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Publish(context.Background(), actor, tpl.ID)

	sections := draftSections()
	sections[0].Fields[0].Label = "Overall mood"
	sections[0].Fields[1].Config.Placeholder = "Anything notable"
	got, err := svc.Update(context.Background(), actor, tpl.ID, UpdateInput{Sections: sections})
	if err != nil {
		t.Fatalf("cosmetic change on an active template should be accepted: %v", err)
	}
	if got.Sections[0].Fields[0].Label != "Overall mood" {
		t.Error("expected label change to apply")
	}
	if got.Version != 1 {
		t.Errorf("cosmetic change must not bump the version, got %d", got.Version)
	}
}

func TestUpdate_ActiveTypeLocked(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Publish(context.Background(), actor, tpl.ID)

	sections := draftSections()
	sections[0].Fields[0].Type = fieldtype.TextShort
	_, err := svc.Update(context.Background(), actor, tpl.ID, UpdateInput{Sections: sections})
	var conflict *EditConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected EditConflictError for type change, got %v", err)
	}
}

func TestUpdate_ActiveStructureLocked(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Publish(context.Background(), actor, tpl.ID)

	sections := draftSections()
	sections[0].Fields = append(sections[0].Fields, Field{ID: "f9", Type: fieldtype.YesNo, Order: 9})
	_, err := svc.Update(context.Background(), actor, tpl.ID, UpdateInput{Sections: sections})
	var conflict *EditConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected EditConflictError for structural change, got %v", err)
	}
}

func TestUpdate_ArchivedRejected(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Archive(context.Background(), actor, tpl.ID)

	_, err := svc.Update(context.Background(), actor, tpl.ID, UpdateInput{Sections: draftSections()})
	var conflict *EditConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected EditConflictError, got %v", err)
	}
}

func TestRevise_BumpsVersion(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Publish(context.Background(), actor, tpl.ID)

	got, err := svc.Revise(context.Background(), actor, tpl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusDraft {
		t.Errorf("expected DRAFT after revise, got %q", got.Status)
	}
	if got.Version != 2 {
		t.Errorf("expected version 2, got %d", got.Version)
	}
}

func TestRevise_DraftRejected(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})

	if _, err := svc.Revise(context.Background(), actor, tpl.ID); err == nil {
		t.Fatal("expected error revising a draft")
	}
}

func TestReviseEditPublish_RoundTrip(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Publish(context.Background(), actor, tpl.ID)

	svc.Revise(context.Background(), actor, tpl.ID)
	sections := draftSections()
	sections[0].Fields = append(sections[0].Fields, Field{ID: "f3", Label: "Pain", Type: fieldtype.RatingScale, Order: 3})
	if _, err := svc.Update(context.Background(), actor, tpl.ID, UpdateInput{Sections: sections}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Publish(context.Background(), actor, tpl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Version != 2 || got.Status != StatusActive {
		t.Errorf("expected active version 2, got %q v%d", got.Status, got.Version)
	}
	if _, ok := got.FieldByID("f3"); !ok {
		t.Error("expected f3 on the republished template")
	}
}

func TestArchive(t *testing.T) {
	svc, rec := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Publish(context.Background(), actor, tpl.ID)

	got, err := svc.Archive(context.Background(), actor, tpl.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusArchived {
		t.Errorf("expected ARCHIVED, got %q", got.Status)
	}
	if got.IsEnabled {
		t.Error("archived template must not stay enabled")
	}
	if len(rec.events) != 2 || rec.events[1].Action != auditlog.ActionTemplateArchived {
		t.Errorf("expected archive audit event, got %+v", rec.events)
	}
}

func TestArchive_AlreadyArchived(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Archive(context.Background(), actor, tpl.ID)

	if _, err := svc.Archive(context.Background(), actor, tpl.ID); err == nil {
		t.Fatal("expected error archiving twice")
	}
}

func TestSetEnabled_ArchivedRejected(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})
	svc.Publish(context.Background(), actor, tpl.ID)
	svc.Archive(context.Background(), actor, tpl.ID)

	var conflict *EditConflictError
	if _, err := svc.SetEnabled(context.Background(), actor, tpl.ID, true); !errors.As(err, &conflict) {
		t.Fatalf("expected edit conflict re-enabling an archived template, got %v", err)
	}

	got, _ := svc.Get(context.Background(), actor, tpl.ID)
	if got.IsEnabled {
		t.Error("archived template must stay disabled")
	}
}

func TestSetEnabled_DraftRejected(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()
	tpl, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "T", Sections: draftSections()})

	var conflict *EditConflictError
	if _, err := svc.SetEnabled(context.Background(), actor, tpl.ID, false); !errors.As(err, &conflict) {
		t.Fatalf("expected edit conflict toggling a draft, got %v", err)
	}
}

func TestListEnabled_FiltersAndOrders(t *testing.T) {
	svc, _ := newTestService()
	actor := testActor()

	b, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "Bravo", Sections: draftSections()})
	svc.Publish(context.Background(), actor, b.ID)
	a, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "Alpha", Sections: draftSections()})
	svc.Publish(context.Background(), actor, a.ID)
	svc.CreateDraft(context.Background(), actor, CreateInput{Name: "Draft only", Sections: draftSections()})
	d, _ := svc.CreateDraft(context.Background(), actor, CreateInput{Name: "Disabled", Sections: draftSections()})
	svc.Publish(context.Background(), actor, d.ID)
	svc.SetEnabled(context.Background(), actor, d.ID, false)

	items, err := svc.ListEnabled(context.Background(), actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 enabled templates, got %d", len(items))
	}
	if items[0].Name != "Alpha" || items[1].Name != "Bravo" {
		t.Errorf("expected name order, got %s then %s", items[0].Name, items[1].Name)
	}
}
