package ingest

import (
	"fmt"

	"argus-sod/core/store"
)

// Mapper defaults. A mapper never fails: absent fields resolve to these
// values, present values pass through uninterpreted. Type coercion, if any,
// happens at store-write time.
const (
	defaultDate        = "2024-01-01"
	defaultSeverity    = "Medium"
	defaultStatus      = "Open"
	defaultReporter    = "System"
	defaultType        = "Unknown"
	defaultPriority    = "Medium"
	defaultAssignee    = "Unassigned"
	defaultDescription = "No description"
	defaultDatasetName = "Unknown Dataset"
	defaultSource      = "Unknown"
)

// ticketIDOffset shifts the row ordinal when synthesizing ticket IDs, so the
// first ticket in a file is always TICKET_1000.
const ticketIDOffset = 1000

// MapIncidents normalizes arbitrary incident exports into the
// cyber_incidents schema. The description concatenates the source's title
// and body columns with " - ", matching the upstream export convention;
// both halves default to empty strings.
func MapIncidents(rows []Row) []store.Incident {
	out := make([]store.Incident, 0, len(rows))
	for _, row := range rows {
		title, _ := row.Field("Title")
		body, _ := row.Field("Description")
		out = append(out, store.Incident{
			DateReported: row.Get("Date", defaultDate),
			IncidentType: row.Get("Type", defaultType),
			Severity:     row.Get("Severity", defaultSeverity),
			Status:       row.Get("Status", defaultStatus),
			Description:  title + " - " + body,
			ReportedBy:   row.Get("Reported By", defaultReporter),
		})
	}
	return out
}

// MapTickets synthesizes ticket IDs from the row ordinal; everything else is
// lookup-with-default. Priority borrows the source's category column.
func MapTickets(rows []Row) []store.Ticket {
	out := make([]store.Ticket, 0, len(rows))
	for i, row := range rows {
		out = append(out, store.Ticket{
			TicketID:    fmt.Sprintf("TICKET_%d", i+ticketIDOffset),
			DateCreated: row.Get("Date Created", defaultDate),
			Priority:    row.Get("Category", defaultPriority),
			Status:      row.Get("Status", defaultStatus),
			Description: row.Get("Customer Input", defaultDescription),
			AssignedTo:  row.Get("Assigned To", defaultAssignee),
		})
	}
	return out
}

// MapDatasets passes named fields through. record_count is always 0: it is
// metadata about the catalog entry, never read from the file and never
// computed from actual row counts.
func MapDatasets(rows []Row) []store.DatasetMetadata {
	out := make([]store.DatasetMetadata, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.DatasetMetadata{
			DatasetName: row.Get("dataset_name", defaultDatasetName),
			Source:      row.Get("source_organization", defaultSource),
			RecordCount: 0,
			LastUpdated: row.Get("last_updated", defaultDate),
			Description: row.Get("description", defaultDescription),
		})
	}
	return out
}
