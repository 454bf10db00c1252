package datasource

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/taskgraph/harpload/filesystem"
	"golang.org/x/net/context"
)

const maxLineSize = 16 * 1024 * 1024

// Row is one parsed line, exactly valuesPerLine values wide.
type Row []float64

// Shard is a block of consecutive rows. Every shard of a ShardList holds
// shardSize rows except possibly the last one.
type Shard []Row

// ShardList holds the shards of one file in file order.
type ShardList []Shard

// NumRows counts the rows over all shards.
func (l ShardList) NumRows() int {
	n := 0
	for _, s := range l {
		n += len(s)
	}
	return n
}

// Rows flattens the shards back into file order.
func (l ShardList) Rows() []Row {
	rows := make([]Row, 0, l.NumRows())
	for _, s := range l {
		rows = append(rows, s...)
	}
	return rows
}

type options struct {
	policy    RetryPolicy
	logger    logrus.FieldLogger
	regexpSep bool
	shardSize int
}

type Option func(*options)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) { o.policy = p }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegexpSeparator treats the separator as a regular expression.
func WithRegexpSeparator() Option {
	return func(o *options) { o.regexpSep = true }
}

// WithShardSize sets the shard capacity used by a DataSource.
func WithShardSize(n int) Option {
	return func(o *options) { o.shardSize = n }
}

func buildOptions(opts []Option) options {
	o := options{
		policy:    DefaultRetryPolicy(),
		shardSize: DefaultShardSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}
	return o
}

// ShardedCSVReader reads a delimited text file and packs its rows into
// fixed-size shards. A reader holds no per-call state and may be shared
// between goroutines.
type ShardedCSVReader struct {
	client        filesystem.Client
	valuesPerLine int
	shardSize     int
	sep           string
	sepRe         *regexp.Regexp
	policy        RetryPolicy
	logger        logrus.FieldLogger
}

func NewShardedCSVReader(client filesystem.Client, valuesPerLine, shardSize int, sep string, opts ...Option) (*ShardedCSVReader, error) {
	if client == nil {
		return nil, errors.New("datasource: nil filesystem client")
	}
	if valuesPerLine <= 0 {
		return nil, fmt.Errorf("datasource: valuesPerLine must be positive, got %d", valuesPerLine)
	}
	if shardSize <= 0 {
		return nil, fmt.Errorf("datasource: shardSize must be positive, got %d", shardSize)
	}
	if sep == "" {
		return nil, errors.New("datasource: empty separator")
	}
	o := buildOptions(opts)
	r := &ShardedCSVReader{
		client:        client,
		valuesPerLine: valuesPerLine,
		shardSize:     shardSize,
		sep:           sep,
		policy:        o.policy,
		logger:        o.logger,
	}
	if o.regexpSep {
		re, err := regexp.Compile(sep)
		if err != nil {
			return nil, fmt.Errorf("datasource: bad separator pattern %q: %v", sep, err)
		}
		r.sepRe = re
	}
	return r, nil
}

func (r *ShardedCSVReader) ValuesPerLine() int { return r.valuesPerLine }

func (r *ShardedCSVReader) ShardSize() int { return r.shardSize }

// Read loads fileName into a ShardList, retrying failed attempts according
// to the reader's RetryPolicy. Every attempt starts from scratch. The
// context is only observed between attempts.
func (r *ShardedCSVReader) Read(ctx context.Context, fileName string) (ShardList, error) {
	maxAttempts := r.policy.maxAttempts()
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("datasource: load %s cancelled after %d attempts: %w", fileName, attempt-1, err)
		}
		shards, err := r.load(fileName)
		if err == nil {
			return shards, nil
		}
		lerr := asLoadError(fileName, err)
		r.logger.WithFields(logrus.Fields{
			"file":    fileName,
			"attempt": attempt,
			"kind":    lerr.Kind.String(),
		}).WithError(lerr.Err).Error("load fails")

		retryable := r.policy.retryable(lerr.Kind)
		if !retryable || attempt >= maxAttempts {
			lerr.Attempts = attempt
			lerr.Exhausted = retryable
			if retryable {
				r.logger.WithField("file", fileName).Error("Fail to load files.")
			}
			return nil, lerr
		}
		if err := sleepContext(ctx, r.policy.delay(attempt)); err != nil {
			return nil, fmt.Errorf("datasource: load %s cancelled after %d attempts: %w", fileName, attempt, err)
		}
	}
}

func asLoadError(fileName string, err error) *LoadError {
	var lerr *LoadError
	if errors.As(err, &lerr) {
		return lerr
	}
	return &LoadError{Path: fileName, Kind: IOFailure, Err: err}
}

// load is one attempt. The stream is closed on every path out.
func (r *ShardedCSVReader) load(fileName string) (ShardList, error) {
	in, err := r.client.OpenReadCloser(fileName)
	if err != nil {
		return nil, &LoadError{Path: fileName, Kind: IOFailure, Err: err}
	}
	defer in.Close()
	return r.ReadShards(fileName, in)
}

// ReadShards parses one stream without retrying. fileName only labels errors.
func (r *ShardedCSVReader) ReadShards(fileName string, in io.Reader) (ShardList, error) {
	shards := ShardList{}
	shard := make(Shard, 0, r.shardSize)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := r.parseRow(line)
		if err != nil {
			return nil, &LoadError{Path: fileName, Kind: ParseFailure, Line: lineNo, Err: err}
		}
		shard = append(shard, row)
		if len(shard) == r.shardSize {
			shards = append(shards, shard)
			shard = make(Shard, 0, r.shardSize)
		}
	}
	if err := scanner.Err(); err != nil {
		kind := IOFailure
		if err == bufio.ErrTooLong {
			kind = ParseFailure
		}
		return nil, &LoadError{Path: fileName, Kind: kind, Line: lineNo + 1, Err: err}
	}

	// compress the last shard
	if len(shard) > 0 {
		shards = append(shards, shard[:len(shard):len(shard)])
	}
	return shards, nil
}

func (r *ShardedCSVReader) parseRow(line string) (Row, error) {
	var tokens []string
	if r.sepRe != nil {
		tokens = r.sepRe.Split(line, -1)
	} else {
		tokens = strings.Split(line, r.sep)
	}
	if len(tokens) < r.valuesPerLine {
		return nil, fmt.Errorf("got %d fields, want %d", len(tokens), r.valuesPerLine)
	}
	row := make(Row, r.valuesPerLine)
	for j := range row {
		v, err := strconv.ParseFloat(strings.TrimSpace(tokens[j]), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", j, err)
		}
		row[j] = v
	}
	return row, nil
}
