package pipeline

import (
	"ci-relay/config"
	"ci-relay/internal/model"
)

// UnitTestPipeline is the unit-test pipeline: a push to the configured
// branch provisions a database, installs dependencies and runs the test
// suite with coverage. Test results are uploaded even after a failed
// suite (unless the run was cancelled); coverage upload is unconditional.
func UnitTestPipeline(cfg *config.Config) model.Pipeline {
	return model.Pipeline{
		Name: "unit-tests",
		Trigger: model.Trigger{
			EventType: model.EventTypePush,
			Branch:    cfg.Pipeline.Branch,
		},
		Services: []model.Service{
			{
				Name:  "db",
				Image: cfg.Database.Image,
				Port:  cfg.Database.Port,
				Env: map[string]string{
					"POSTGRES_USER":     "postgres",
					"POSTGRES_PASSWORD": "postgres",
					"POSTGRES_DB":       "testdb",
				},
			},
		},
		Steps: []model.Step{
			{
				Name:    "install-dependencies",
				Command: "pip install '.[dev]'",
			},
			{
				Name:    "run-unit-tests",
				Command: "pytest --junitxml=junit.xml --cov --cov-report=xml",
				Env: map[string]string{
					"TEST_DB_URI": cfg.Database.URI,
				},
			},
			{
				Name:   "upload-test-results",
				Action: ActionUploadTestResults,
				With:   map[string]string{"file": "junit.xml"},
				When:   model.WhenNotCancelled,
			},
			{
				Name:   "upload-coverage",
				Action: ActionUploadCoverage,
				With:   map[string]string{"file": "coverage.xml"},
				When:   model.WhenAlways,
			},
		},
	}
}
