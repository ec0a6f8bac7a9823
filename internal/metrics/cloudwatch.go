// Package metrics publishes poll counters to CloudWatch. Publishing is
// best-effort: a misconfigured or unreachable CloudWatch never fails a poll.
package metrics

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/113rajababu113-wq/eth-options-data-pipeline/logger"
)

const defaultNamespace = "EthOptionsPipeline"

// Publisher sends metric data to CloudWatch. A nil Publisher is valid and
// publishes nothing, so callers never need to branch on whether metrics are
// enabled.
type Publisher struct {
	client    *cloudwatch.Client
	namespace string
	log       *logger.Log
}

// NewPublisher initialises the CloudWatch client for the given region and
// namespace. When the AWS configuration cannot be loaded a warning is logged
// and a nil (disabled) publisher is returned.
func NewPublisher(ctx context.Context, region, namespace string) *Publisher {
	log := logger.GetLogger()

	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.WithComponent("cloudwatch").WithError(err).Warn("failed to load AWS configuration; CloudWatch metrics disabled")
		return nil
	}

	if namespace == "" {
		namespace = defaultNamespace
	}

	return &Publisher{
		client:    cloudwatch.NewFromConfig(cfg),
		namespace: namespace,
		log:       log,
	}
}

// PublishPoll reports the counters of one completed poll.
func (p *Publisher) PublishPoll(ctx context.Context, counters map[string]float64) {
	if p == nil || p.client == nil || len(counters) == 0 {
		return
	}

	data := make([]cwtypes.MetricDatum, 0, len(counters))
	for name, value := range counters {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(name),
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(value),
		})
	}

	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(p.namespace),
		MetricData: data,
	})
	if err != nil {
		p.log.WithComponent("cloudwatch").WithError(err).Warn("failed to publish poll metrics")
	}
}
