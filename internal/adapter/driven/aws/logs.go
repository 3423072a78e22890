package aws

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/diillson/aws-log-remediator/internal/domain/entity"
	"github.com/diillson/aws-log-remediator/internal/shared/types"
)

// maxDescribeLogGroupsPage é o maior Limit aceito pelo DescribeLogGroups.
const maxDescribeLogGroupsPage = 50

const (
	lambdaLogPrefix = "/aws/lambda/"
	rdsLogPrefix    = "/aws/rds/instance/"
)

// ListLogGroups lê apenas a primeira página do DescribeLogGroups.
// O resultado é truncado em limit mesmo que a API devolva mais itens.
func (r *AWSRepositoryImpl) ListLogGroups(ctx context.Context, limit int, prefix string) ([]entity.LogGroupDescriptor, error) {
	if limit < 1 {
		return nil, &types.InvalidRequestError{
			Component: serviceLogs,
			Err:       fmt.Errorf("limit must be at least 1, got %d", limit),
		}
	}

	client, err := r.logsClient()
	if err != nil {
		return nil, err
	}

	input := &cloudwatchlogs.DescribeLogGroupsInput{
		Limit: aws.Int32(int32(min(limit, maxDescribeLogGroupsPage))),
	}
	if prefix != "" {
		input.LogGroupNamePrefix = aws.String(prefix)
	}

	page, err := client.DescribeLogGroups(ctx, input)
	if err != nil {
		return nil, classifyAWSError(serviceLogs, err)
	}

	result := make([]entity.LogGroupDescriptor, 0, min(limit, len(page.LogGroups)))
	for _, lg := range page.LogGroups {
		if len(result) == limit {
			break
		}
		d := entity.LogGroupDescriptor{
			Name:          aws.ToString(lg.LogGroupName),
			Region:        r.cfg.Region,
			ARN:           aws.ToString(lg.Arn),
			RetentionDays: int(aws.ToInt32(lg.RetentionInDays)),
			StoredBytes:   aws.ToInt64(lg.StoredBytes),
		}
		if ms := aws.ToInt64(lg.CreationTime); ms > 0 {
			d.CreationTime = time.UnixMilli(ms).UTC()
		}
		result = append(result, d)
	}
	return result, nil
}

// DescribeSourceResource identifica funções Lambda e instâncias RDS pelo nome do log group.
func (r *AWSRepositoryImpl) DescribeSourceResource(ctx context.Context, logGroupName string) (*entity.SourceResource, error) {
	switch {
	case strings.HasPrefix(logGroupName, lambdaLogPrefix):
		fn := strings.TrimPrefix(logGroupName, lambdaLogPrefix)
		if fn == "" {
			return nil, nil
		}
		return r.describeLambda(ctx, fn)
	case strings.HasPrefix(logGroupName, rdsLogPrefix):
		rest := strings.TrimPrefix(logGroupName, rdsLogPrefix)
		id, _, _ := strings.Cut(rest, "/")
		if id == "" {
			return nil, nil
		}
		return r.describeDBInstance(ctx, id)
	}
	return nil, nil
}

func (r *AWSRepositoryImpl) describeLambda(ctx context.Context, name string) (*entity.SourceResource, error) {
	client, err := r.lambdaClient()
	if err != nil {
		return nil, err
	}

	out, err := client.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return nil, classifyAWSError(serviceLambda, err)
	}

	attrs := map[string]string{}
	putString(attrs, "runtime", string(out.Runtime))
	putString(attrs, "handler", aws.ToString(out.Handler))
	putString(attrs, "last_modified", aws.ToString(out.LastModified))
	if out.MemorySize != nil {
		attrs["memory_mb"] = strconv.Itoa(int(*out.MemorySize))
	}
	if out.Timeout != nil {
		attrs["timeout_seconds"] = strconv.Itoa(int(*out.Timeout))
	}

	return &entity.SourceResource{
		Type:       "lambda:function",
		ID:         name,
		Attributes: attrs,
	}, nil
}

func (r *AWSRepositoryImpl) describeDBInstance(ctx context.Context, id string) (*entity.SourceResource, error) {
	client, err := r.rdsClient()
	if err != nil {
		return nil, err
	}

	out, err := client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(id),
	})
	if err != nil {
		return nil, classifyAWSError(serviceRDS, err)
	}
	if len(out.DBInstances) == 0 {
		return nil, nil
	}

	db := out.DBInstances[0]
	attrs := map[string]string{}
	putString(attrs, "engine", aws.ToString(db.Engine))
	putString(attrs, "engine_version", aws.ToString(db.EngineVersion))
	putString(attrs, "instance_class", aws.ToString(db.DBInstanceClass))
	putString(attrs, "status", aws.ToString(db.DBInstanceStatus))
	if db.MultiAZ != nil {
		attrs["multi_az"] = strconv.FormatBool(*db.MultiAZ)
	}

	return &entity.SourceResource{
		Type:       "rds:db",
		ID:         id,
		Attributes: attrs,
	}, nil
}

func putString(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}
