package parser

import (
	"time"

	"LaunchDigest/internal/domain"
)

// SampleAnnouncements is the built-in list used when the live source cannot be read.
// Its content is fixed; only the discovery timestamp varies.
func SampleAnnouncements(now time.Time) []domain.Announcement {
	return []domain.Announcement{
		domain.NewAnnouncement(
			"Amazon Bedrock",
			"Amazon Bedrock announces Claude 3.5 Sonnet v2",
			"New version of Claude 3.5 Sonnet available on Amazon Bedrock",
			"https://aws.amazon.com/about-aws/whats-new/2024/10/amazon-bedrock-claude-3-5-sonnet-v2/",
			now,
		),
		domain.NewAnnouncement(
			"AWS Lambda",
			"AWS Lambda now supports Node.js 22",
			"AWS Lambda adds support for Node.js 22 runtime",
			"https://aws.amazon.com/lambda/",
			now,
		),
		domain.NewAnnouncement(
			"Amazon S3",
			"Amazon S3 Express One Zone storage class",
			"New S3 storage class for high-performance applications",
			"https://aws.amazon.com/s3/storage-classes/express-one-zone/",
			now,
		),
	}
}
