package registry

import (
	"context"
	"errors"
	"strconv"
	"time"

	perr "storeuptime/internal/platform/errors"
	"storeuptime/internal/services/reports/domain"

	goredis "github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces job hashes
const KeyPrefix = "storeuptime:report:"

// create writes the hash only when the key is absent
var createScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[1], 'submitted_at', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// finish moves a Running hash to its terminal state; -1 is missing, 0 is not Running
var finishScript = goredis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'status')
if not cur then
	return -1
end
if cur ~= 'Running' then
	return 0
end
redis.call('HSET', KEYS[1], 'status', ARGV[1], 'artifact_path', ARGV[2], 'error', ARGV[3], 'stores', ARGV[4], 'finished_at', ARGV[5])
if tonumber(ARGV[6]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[6])
else
	redis.call('PERSIST', KEYS[1])
end
return 1
`)

// Redis keeps jobs in hashes so several API replicas share one view
type Redis struct {
	rdb       goredis.Cmdable
	retention time.Duration
	running   time.Duration
	now       func() time.Time
}

var _ domain.Registry = (*Redis)(nil)

// NewRedis builds a registry over rdb. retention expires finished jobs;
// running bounds how long an unfinished job is kept; zero means no expiry
func NewRedis(rdb goredis.Cmdable, retention, running time.Duration) *Redis {
	if rdb == nil {
		panic("registry.Redis requires a non nil client")
	}
	return &Redis{rdb: rdb, retention: retention, running: running, now: time.Now}
}

func key(id string) string { return KeyPrefix + id }

func unavailable(err error, op, id string) error {
	return perr.WithOp(perr.Wrapf(err, perr.ErrorCodeUnavailable, "redis %s report %s", op, id), "registry."+op)
}

// Create registers job as Running
func (r *Redis) Create(ctx context.Context, job domain.Job) error {
	if job.ID == "" {
		return perr.Validationf("report id is required")
	}
	at := job.SubmittedAt
	if at.IsZero() {
		at = r.now()
	}
	n, err := createScript.Run(ctx, r.rdb, []string{key(job.ID)},
		string(domain.StatusRunning), at.UTC().Format(time.RFC3339Nano), r.running.Milliseconds()).Int()
	if err != nil {
		return unavailable(err, "create", job.ID)
	}
	if n == 0 {
		return perr.Conflictf("report %s already exists", job.ID)
	}
	return nil
}

// Get loads the job hash
func (r *Redis) Get(ctx context.Context, id string) (domain.Job, error) {
	h, err := r.rdb.HGetAll(ctx, key(id)).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return domain.Job{}, unavailable(err, "get", id)
	}
	if len(h) == 0 {
		return domain.Job{}, perr.NotFoundf("report %s not found", id)
	}
	return decode(id, h)
}

// Finish records the terminal state of a Running job
func (r *Redis) Finish(ctx context.Context, job domain.Job) error {
	if !job.Status.Terminal() {
		return perr.Validationf("report %s cannot finish as %s", job.ID, job.Status)
	}
	at := job.FinishedAt
	if at.IsZero() {
		at = r.now()
	}
	n, err := finishScript.Run(ctx, r.rdb, []string{key(job.ID)},
		string(job.Status), job.ArtifactPath, job.Error, job.Stores,
		at.UTC().Format(time.RFC3339Nano), r.retention.Milliseconds()).Int()
	if err != nil {
		return unavailable(err, "finish", job.ID)
	}
	switch n {
	case -1:
		return perr.NotFoundf("report %s not found", job.ID)
	case 0:
		return perr.Conflictf("report %s already finished", job.ID)
	}
	return nil
}

func decode(id string, h map[string]string) (domain.Job, error) {
	job := domain.Job{
		ID:           id,
		Status:       domain.JobStatus(h["status"]),
		ArtifactPath: h["artifact_path"],
		Error:        h["error"],
	}
	switch job.Status {
	case domain.StatusRunning, domain.StatusComplete, domain.StatusFailed:
	default:
		return domain.Job{}, perr.Parsef("report %s has unknown status %q", id, job.Status)
	}
	var err error
	if s := h["submitted_at"]; s != "" {
		if job.SubmittedAt, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return domain.Job{}, perr.Wrapf(err, perr.ErrorCodeParse, "report %s submitted_at", id)
		}
	}
	if s := h["finished_at"]; s != "" {
		if job.FinishedAt, err = time.Parse(time.RFC3339Nano, s); err != nil {
			return domain.Job{}, perr.Wrapf(err, perr.ErrorCodeParse, "report %s finished_at", id)
		}
	}
	if s := h["stores"]; s != "" {
		if job.Stores, err = strconv.Atoi(s); err != nil {
			return domain.Job{}, perr.Wrapf(err, perr.ErrorCodeParse, "report %s stores", id)
		}
	}
	return job, nil
}
