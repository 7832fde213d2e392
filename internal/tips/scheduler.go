package tips

import (
	"sync"

	"github.com/roylee0704/gron"

	"folivix/internal/providers"
	"folivix/internal/services"
	"folivix/internal/structures"
	"folivix/internal/tips/interfaces"
)

// Scheduler owns the periodic tip rotation. It is started by the app and
// must be stopped on shutdown so no rotation fires after teardown.
type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	diseases services.DiseaseServiceInterface
	cron     *gron.Cron
	opsMu    sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Tips.Interval

	s.cron.AddFunc(gron.Every(interval), func() {
		s.opsMu.Lock()
		defer s.opsMu.Unlock()
		s.diseases.RotateTip()
	})

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Tip rotation every %s", interval)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func NewScheduler(config *structures.Config, logger providers.Logger, diseases services.DiseaseServiceInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:   config,
		logger:   logger,
		diseases: diseases,
	}
}
