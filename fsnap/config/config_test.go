package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	internal "github.com/ZanzyTHEbar/fsnap/fsnap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	suite.tempDir = suite.T().TempDir()

	// Change to temp directory so no stray config.yaml is picked up
	err = os.Chdir(suite.tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
}

func (suite *ConfigTestSuite) writeConfig(name, content string) string {
	path := filepath.Join(suite.tempDir, name)
	require.NoError(suite.T(), os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), internal.DefaultLogLevel, cfg.Log.Level)
	assert.Equal(suite.T(), internal.DefaultLogFormat, cfg.Log.Format)
	assert.Equal(suite.T(), internal.DefaultMaxWorkers, cfg.Resolver.MaxWorkers)
	assert.Equal(suite.T(), time.Duration(0), cfg.Resolver.Timeout)
	assert.False(suite.T(), cfg.S3.Enabled)
	assert.Equal(suite.T(), internal.DefaultS3Region, cfg.S3.Region)
	assert.True(suite.T(), cfg.S3.UsePathStyle)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configFile := suite.writeConfig("config.yaml", `
log:
  level: debug
  format: console
resolver:
  maxWorkers: 4
  timeout: 250ms
s3:
  enabled: true
  endpoint: "http://localhost:9000"
  bucket: "listings"
  region: "eu-west-1"
  accessKey: "minio"
  secretKey: "minio123"
`)

	cfg, err := LoadConfig(configFile)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), "debug", cfg.Log.Level)
	assert.Equal(suite.T(), "console", cfg.Log.Format)
	assert.Equal(suite.T(), 4, cfg.Resolver.MaxWorkers)
	assert.Equal(suite.T(), 250*time.Millisecond, cfg.Resolver.Timeout)
	assert.True(suite.T(), cfg.S3.Enabled)
	assert.Equal(suite.T(), "http://localhost:9000", cfg.S3.Endpoint)
	assert.Equal(suite.T(), "listings", cfg.S3.Bucket)
	assert.Equal(suite.T(), "eu-west-1", cfg.S3.Region)
	assert.Equal(suite.T(), "minio", cfg.S3.AccessKey)
	assert.Equal(suite.T(), "minio123", cfg.S3.SecretKey)
}

func (suite *ConfigTestSuite) TestLoadConfigFromEnvironment() {
	suite.T().Setenv("FSNAP_RESOLVER_MAXWORKERS", "7")
	suite.T().Setenv("FSNAP_LOG_LEVEL", "warn")

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 7, cfg.Resolver.MaxWorkers)
	assert.Equal(suite.T(), "warn", cfg.Log.Level)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	// An explicit path that does not exist is an error, unlike the search path case
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMalformedFile() {
	configFile := suite.writeConfig("malformed.yaml", `
resolver:
  maxWorkers: 4
  invalid_yaml: [unclosed bracket
`)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigRejectsInvalidValues() {
	configFile := suite.writeConfig("workers.yaml", `
resolver:
  maxWorkers: 0
`)
	cfg, err := LoadConfig(configFile)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)

	configFile = suite.writeConfig("bucket.yaml", `
s3:
  enabled: true
`)
	cfg, err = LoadConfig(configFile)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestAppConfigGlobal() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), cfg.Resolver.MaxWorkers, AppConfig.Resolver.MaxWorkers)
	assert.Equal(suite.T(), cfg.Log.Level, AppConfig.Log.Level)
}

// BenchmarkLoadConfig benchmarks config loading performance
func BenchmarkLoadConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		cfg, err := LoadConfig("")
		if err != nil {
			b.Fatal(err)
		}
		_ = cfg
	}
}
