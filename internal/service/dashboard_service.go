package service

import (
	"hospital-equipment-tracker/internal/maintenance"
)

// StatusCounts counts equipment per derived status
type StatusCounts struct {
	Total      int `json:"total"`
	Overdue    int `json:"overdue"`
	Upcoming   int `json:"upcoming"`
	Maintained int `json:"maintained"`
}

func (c *StatusCounts) add(st maintenance.Status) {
	c.Total++
	switch st {
	case maintenance.StatusOverdue:
		c.Overdue++
	case maintenance.StatusUpcoming:
		c.Upcoming++
	case maintenance.StatusMaintained:
		c.Maintained++
	}
}

type DashboardSummary struct {
	PPM          StatusCounts            `json:"ppm"`
	OCM          StatusCounts            `json:"ocm"`
	Departments  map[string]StatusCounts `json:"departments"`
	ReminderDays int                     `json:"reminder_days"`
	Upcoming     []UpcomingItem          `json:"upcoming"`
	TrainingDue  int                     `json:"training_due"`
}

type DashboardService struct {
	ppmService      *PPMService
	ocmService      *OCMService
	trainingService *TrainingService
	settingsService *SettingsService
	clock
}

func NewDashboardService(ppmService *PPMService, ocmService *OCMService, trainingService *TrainingService, settingsService *SettingsService) *DashboardService {
	return &DashboardService{
		ppmService:      ppmService,
		ocmService:      ocmService,
		trainingService: trainingService,
		settingsService: settingsService,
	}
}

// Summary counts equipment by freshly derived status and lists what is due soon
func (s *DashboardService) Summary() (*DashboardSummary, error) {
	setting, err := s.settingsService.Get()
	if err != nil {
		return nil, err
	}
	ppm, err := s.ppmService.All()
	if err != nil {
		return nil, err
	}
	ocm, err := s.ocmService.All()
	if err != nil {
		return nil, err
	}
	trainings, err := s.trainingService.All()
	if err != nil {
		return nil, err
	}

	today := s.today()
	summary := &DashboardSummary{
		Departments:  map[string]StatusCounts{},
		ReminderDays: setting.ReminderDays,
		Upcoming:     collectUpcoming(ppm, ocm, today, setting.ReminderDays),
	}
	if summary.Upcoming == nil {
		summary.Upcoming = []UpcomingItem{}
	}

	for _, e := range ppm {
		summary.PPM.add(e.Status)
		dept := summary.Departments[e.Department]
		dept.add(e.Status)
		summary.Departments[e.Department] = dept
	}
	for _, e := range ocm {
		summary.OCM.add(e.Status)
		dept := summary.Departments[e.Department]
		dept.add(e.Status)
		summary.Departments[e.Department] = dept
	}
	for _, t := range trainings {
		if due, ok := maintenance.ParseDate(t.NextDueDate); ok && !due.After(today.AddDate(0, 0, setting.ReminderDays)) {
			summary.TrainingDue++
		}
	}

	return summary, nil
}
