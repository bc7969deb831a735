package cassandra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gocql/gocql"
	"github.com/stringlab/internal/config"
	"github.com/stringlab/pkg/logger"
)

const (
	maxQueryRetries = 3
	connsPerHost    = 2
)

var consistencyLevels = map[string]gocql.Consistency{
	"ONE":          gocql.One,
	"TWO":          gocql.Two,
	"THREE":        gocql.Three,
	"QUORUM":       gocql.Quorum,
	"ALL":          gocql.All,
	"LOCAL_QUORUM": gocql.LocalQuorum,
	"EACH_QUORUM":  gocql.EachQuorum,
	"LOCAL_ONE":    gocql.LocalOne,
}

// retryableErrors are substrings of driver errors worth another attempt
var retryableErrors = []string{"timeout", "connection", "unavailable"}

// Client owns the run history session
type Client struct {
	session  *gocql.Session
	keyspace string
	logger   *logger.Logger
}

// NewClient connects to the cluster and makes sure the runs schema exists
func NewClient(cfg config.CassandraConfig, log *logger.Logger) (*Client, error) {
	session, err := newCluster(cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Cassandra session: %w", err)
	}

	log.Info("Connected to Cassandra",
		logger.F("hosts", strings.Join(cfg.Hosts, ",")),
		logger.F("keyspace", cfg.Keyspace))

	c := &Client{session: session, keyspace: cfg.Keyspace, logger: log}
	if err := c.migrate(); err != nil {
		session.Close()
		return nil, err
	}
	return c, nil
}

func newCluster(cfg config.CassandraConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.Timeout
	cluster.Consistency = parseConsistency(cfg.Consistency)
	cluster.RetryPolicy = RetryPolicy(maxQueryRetries)
	cluster.NumConns = connsPerHost
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	return cluster
}

// Session returns the underlying gocql.Session
func (c *Client) Session() *gocql.Session {
	return c.session
}

// Keyspace returns the configured keyspace
func (c *Client) Keyspace() string {
	return c.keyspace
}

// Close closes the session
func (c *Client) Close() {
	if c.session == nil {
		return
	}
	c.session.Close()
	c.logger.Info("Cassandra session closed")
}

// schema returns the statements that create the keyspace and run tables.
// runs serves lookups by id; runs_by_day serves newest-first listing.
func schema(keyspace string) []string {
	return []string{
		fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s
			WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.runs (
			run_id text PRIMARY KEY,
			algorithm text,
			pattern text,
			direction text,
			input_length int,
			output_length int,
			execution_time_ms double,
			memory_usage_kb double,
			created_at timestamp
		)`, keyspace),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.runs_by_day (
			day text,
			created_at timestamp,
			run_id text,
			algorithm text,
			pattern text,
			direction text,
			input_length int,
			output_length int,
			execution_time_ms double,
			memory_usage_kb double,
			PRIMARY KEY ((day), created_at, run_id)
		) WITH CLUSTERING ORDER BY (created_at DESC, run_id ASC)`, keyspace),
	}
}

func (c *Client) migrate() error {
	for _, stmt := range schema(c.keyspace) {
		if err := c.session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	c.logger.Info("Cassandra schema initialized", logger.F("keyspace", c.keyspace))
	return nil
}

// parseConsistency maps a level name to gocql, defaulting to QUORUM
func parseConsistency(level string) gocql.Consistency {
	if c, ok := consistencyLevels[strings.ToUpper(level)]; ok {
		return c
	}
	return gocql.Quorum
}

// RetryPolicy retries timeouts and connection errors up to maxRetries times
func RetryPolicy(maxRetries int) gocql.RetryPolicy {
	return &errorRetryPolicy{maxRetries: maxRetries}
}

type errorRetryPolicy struct {
	maxRetries int
}

func (p *errorRetryPolicy) Attempt(q gocql.RetryableQuery) bool {
	return q.Attempts() <= p.maxRetries
}

func (p *errorRetryPolicy) GetRetryType(err error) gocql.RetryType {
	if err == nil {
		return gocql.Rethrow
	}
	if errors.Is(err, gocql.ErrTimeoutNoResponse) {
		return gocql.Retry
	}
	msg := strings.ToLower(err.Error())
	for _, s := range retryableErrors {
		if strings.Contains(msg, s) {
			return gocql.Retry
		}
	}
	return gocql.Rethrow
}
