// Package export writes tariff profiles and day partitions as CSV or JSON
// for spreadsheet and billing imports.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kinjo-energy/kinjo/core/profile"
	"github.com/kinjo-energy/kinjo/core/tariff"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSegmentsCSV writes one row per segment.
func WriteSegmentsCSV(w io.Writer, segs tariff.Segments) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"start", "end", "kind", "minutes"}); err != nil {
		return err
	}
	for _, s := range segs {
		rec := []string{
			tariff.FormatTime(s.Start),
			tariff.FormatTime(s.End),
			s.Kind.String(),
			strconv.Itoa(s.Minutes()),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProfilesCSV writes one row per profile with its share of each kind.
func WriteProfilesCSV(w io.Writer, profiles []profile.Profile) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "prm", "plan", "power_kva", "description", "hp_share", "hc_share", "pointe_share", "created_at"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range profiles {
		shares := tariff.Shares(p.Segments)
		rec := []string{
			p.ID,
			p.PRM,
			string(p.Subscription.Plan),
			strconv.FormatFloat(p.Subscription.PowerKVA, 'f', -1, 64),
			p.Description,
			strconv.FormatFloat(shares[tariff.Peak], 'f', 4, 64),
			strconv.FormatFloat(shares[tariff.OffPeak], 'f', 4, 64),
			strconv.FormatFloat(shares[tariff.SuperPeak], 'f', 4, 64),
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
