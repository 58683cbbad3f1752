package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"fieldkpi/models"
	repository "fieldkpi/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the Mongo implementations' contracts,
// including the unique-index behavior the engine relies on.

type memKPIRepo struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*models.KPIRecord

	failAutomationUpdates bool
}

func newMemKPIRepo() *memKPIRepo {
	return &memKPIRepo{records: make(map[primitive.ObjectID]*models.KPIRecord)}
}

func (r *memKPIRepo) Create(ctx context.Context, record *models.KPIRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.IsActive && existing.SubjectID == record.SubjectID && existing.Period == record.Period {
			return repository.ErrDuplicatePeriod
		}
	}
	record.ID = primitive.NewObjectID()
	clone := *record
	r.records[record.ID] = &clone
	return nil
}

func (r *memKPIRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.KPIRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok || !record.IsActive {
		return nil, repository.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *memKPIRepo) GetAll(ctx context.Context) ([]models.KPIRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.KPIRecord
	for _, record := range r.records {
		if record.IsActive {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *memKPIRepo) FindByAutomationStatus(ctx context.Context, statuses ...models.AutomationStatus) ([]models.KPIRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.KPIRecord
	for _, record := range r.records {
		if !record.IsActive {
			continue
		}
		for _, status := range statuses {
			if record.AutomationStatus == status {
				out = append(out, *record)
				break
			}
		}
	}
	return out, nil
}

func (r *memKPIRepo) UpdateAutomationState(ctx context.Context, id primitive.ObjectID, update repository.AutomationStateUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failAutomationUpdates {
		return errors.New("persistence unavailable")
	}

	record, ok := r.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	if update.Status != nil {
		record.AutomationStatus = *update.Status
	}
	if update.Error != nil {
		record.AutomationError = *update.Error
	}
	if update.ProcessedAt != nil {
		processedAt := *update.ProcessedAt
		record.ProcessedAt = &processedAt
	}
	if update.TriggeredActions != nil {
		record.TriggeredActions = update.TriggeredActions
	}
	if update.TrainingAssignmentIDs != nil {
		record.TrainingAssignmentIDs = update.TrainingAssignmentIDs
	}
	if update.AuditScheduleIDs != nil {
		record.AuditScheduleIDs = update.AuditScheduleIDs
	}
	if update.NotificationLogIDs != nil {
		record.NotificationLogIDs = update.NotificationLogIDs
	}
	record.Metadata.UpdatedBy = update.UpdatedBy
	record.Metadata.UpdatedAt = time.Now()
	return nil
}

func (r *memKPIRepo) SoftDeactivate(ctx context.Context, id primitive.ObjectID, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok || !record.IsActive {
		return repository.ErrNotFound
	}
	record.IsActive = false
	record.Metadata.UpdatedBy = updatedBy
	return nil
}

func (r *memKPIRepo) GetPerformanceStats(ctx context.Context) ([]bson.M, error) {
	return []bson.M{}, nil
}

type memTrainingRepo struct {
	mu          sync.Mutex
	assignments map[primitive.ObjectID]*models.TrainingAssignment

	failCreateForTags map[models.ActionTag]bool
}

func newMemTrainingRepo() *memTrainingRepo {
	return &memTrainingRepo{
		assignments:       make(map[primitive.ObjectID]*models.TrainingAssignment),
		failCreateForTags: make(map[models.ActionTag]bool),
	}
}

func (r *memTrainingRepo) Create(ctx context.Context, assignment *models.TrainingAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreateForTags[assignment.TriggerTag] {
		return errors.New("persistence unavailable")
	}
	assignment.ID = primitive.NewObjectID()
	clone := *assignment
	r.assignments[assignment.ID] = &clone
	return nil
}

func (r *memTrainingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TrainingAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignment, ok := r.assignments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *assignment
	return &clone, nil
}

func (r *memTrainingRepo) FindByKPIAndTag(ctx context.Context, kpiRecordID primitive.ObjectID, tag models.ActionTag) (*models.TrainingAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, assignment := range r.assignments {
		if assignment.KPIRecordID != nil && *assignment.KPIRecordID == kpiRecordID && assignment.TriggerTag == tag {
			clone := *assignment
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memTrainingRepo) FindBySubject(ctx context.Context, subjectID string) ([]models.TrainingAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.TrainingAssignment
	for _, assignment := range r.assignments {
		if assignment.SubjectID == subjectID {
			out = append(out, *assignment)
		}
	}
	return out, nil
}

func (r *memTrainingRepo) FindOverdue(ctx context.Context, now time.Time) ([]models.TrainingAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.TrainingAssignment
	for _, assignment := range r.assignments {
		if assignment.Status != models.TrainingCompleted && assignment.DueDate.Before(now) {
			out = append(out, *assignment)
		}
	}
	return out, nil
}

func (r *memTrainingRepo) Update(ctx context.Context, id primitive.ObjectID, assignment *models.TrainingAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assignments[id]; !ok {
		return repository.ErrNotFound
	}
	clone := *assignment
	r.assignments[id] = &clone
	return nil
}

type memAuditRepo struct {
	mu        sync.Mutex
	schedules map[primitive.ObjectID]*models.AuditSchedule
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{schedules: make(map[primitive.ObjectID]*models.AuditSchedule)}
}

func (r *memAuditRepo) Create(ctx context.Context, schedule *models.AuditSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	schedule.ID = primitive.NewObjectID()
	clone := *schedule
	r.schedules[schedule.ID] = &clone
	return nil
}

func (r *memAuditRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AuditSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	schedule, ok := r.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *schedule
	return &clone, nil
}

func (r *memAuditRepo) FindByKPIAndTag(ctx context.Context, kpiRecordID primitive.ObjectID, tag models.ActionTag) (*models.AuditSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, schedule := range r.schedules {
		if schedule.KPIRecordID != nil && *schedule.KPIRecordID == kpiRecordID && schedule.TriggerTag == tag {
			clone := *schedule
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memAuditRepo) FindBySubject(ctx context.Context, subjectID string) ([]models.AuditSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.AuditSchedule
	for _, schedule := range r.schedules {
		if schedule.SubjectID == subjectID {
			out = append(out, *schedule)
		}
	}
	return out, nil
}

func (r *memAuditRepo) FindOverdue(ctx context.Context, now time.Time) ([]models.AuditSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.AuditSchedule
	for _, schedule := range r.schedules {
		if schedule.Status != models.AuditCompleted && schedule.ScheduledDate.Before(now) {
			out = append(out, *schedule)
		}
	}
	return out, nil
}

func (r *memAuditRepo) Update(ctx context.Context, id primitive.ObjectID, schedule *models.AuditSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.schedules[id]; !ok {
		return repository.ErrNotFound
	}
	clone := *schedule
	r.schedules[id] = &clone
	return nil
}

type memNotificationRepo struct {
	mu      sync.Mutex
	entries map[primitive.ObjectID]*models.NotificationLog
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{entries: make(map[primitive.ObjectID]*models.NotificationLog)}
}

func (r *memNotificationRepo) Create(ctx context.Context, entry *models.NotificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = primitive.NewObjectID()
	clone := *entry
	r.entries[entry.ID] = &clone
	return nil
}

func (r *memNotificationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.NotificationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *entry
	return &clone, nil
}

func (r *memNotificationRepo) FindByKPIAndTemplate(ctx context.Context, kpiRecordID primitive.ObjectID, template models.TemplateType) (*models.NotificationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.KPIRecordID != nil && *entry.KPIRecordID == kpiRecordID && entry.TemplateType == template {
			clone := *entry
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memNotificationRepo) FindRetryEligible(ctx context.Context, filter repository.RetryFilter) ([]models.NotificationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.NotificationLog
	for _, entry := range r.entries {
		if entry.Status != models.NotificationFailed || entry.RetryCount >= entry.MaxRetries {
			continue
		}
		if filter.TemplateType != "" && entry.TemplateType != filter.TemplateType {
			continue
		}
		if filter.SubjectID != "" && entry.SubjectID != filter.SubjectID {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}

func (r *memNotificationRepo) FindFailed(ctx context.Context) ([]models.NotificationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.NotificationLog
	for _, entry := range r.entries {
		if entry.Status == models.NotificationFailed {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) Update(ctx context.Context, id primitive.ObjectID, entry *models.NotificationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return repository.ErrNotFound
	}
	clone := *entry
	r.entries[id] = &clone
	return nil
}

// fakeNotifier fails dispatch for the configured templates and counts sends.
type fakeNotifier struct {
	mu            sync.Mutex
	failTemplates map[models.TemplateType]bool
	sends         map[models.TemplateType]int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		failTemplates: make(map[models.TemplateType]bool),
		sends:         make(map[models.TemplateType]int),
	}
}

func (n *fakeNotifier) Send(ctx context.Context, recipient string, template models.TemplateType, variables map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sends[template]++
	if n.failTemplates[template] {
		return errors.New("smtp unreachable")
	}
	return nil
}

func (n *fakeNotifier) sendCount(template models.TemplateType) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sends[template]
}
