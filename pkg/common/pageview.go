package common

import "time"

// PageViewTimeLayout is how view buckets are keyed in storage (UTC, no zone suffix).
const PageViewTimeLayout = "2006-01-02T15:04:05"

type PageViewRecord struct {
	Repo      string `dynamodbav:"Repo"`
	Timestamp string `dynamodbav:"Timestamp"`
	Count     int    `dynamodbav:"Count"`
	Uniques   int    `dynamodbav:"Uniques"`
}

func NewPageViewRecord(repo string, ts time.Time, count, uniques int) *PageViewRecord {
	return &PageViewRecord{
		Repo:      repo,
		Timestamp: ts.UTC().Format(PageViewTimeLayout),
		Count:     count,
		Uniques:   uniques,
	}
}

func (r *PageViewRecord) Time() (time.Time, error) {
	return time.ParseInLocation(PageViewTimeLayout, r.Timestamp, time.UTC)
}
