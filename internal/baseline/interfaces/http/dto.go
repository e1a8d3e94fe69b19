package http

import (
	"time"

	"highxofy/internal/baseline/application"
	baseline "highxofy/internal/baseline/domain"
)

type resultDTO struct {
	Datetime             string   `json:"datetime"`
	DayType              string   `json:"day_type"`
	DayOfWeek            int      `json:"day_of_week"`
	IsPublicHoliday      bool     `json:"is_public_holiday"`
	UnitNum              int      `json:"unit_num"`
	Demand               *float64 `json:"demand"`
	DRInvokedUnit        int      `json:"dr_invoked_unit"`
	DRInvokedDay         int      `json:"dr_invoked_day"`
	MeanDailyDemandForDR *float64 `json:"mean_daily_demand_for_dr"`
	MeanHighXOfY         *float64 `json:"mean_high_x_of_y"`
}

type listResponse struct {
	SubjectID string      `json:"subject_id"`
	Count     int         `json:"count"`
	Results   []resultDTO `json:"results"`
}

type partitionDTO struct {
	DayType   string `json:"day_type"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Records   int    `json:"records"`
	Defined   int    `json:"defined"`
	Undefined int    `json:"undefined"`
	FirstAt   string `json:"first_at,omitempty"`
	LastAt    string `json:"last_at,omitempty"`
}

type calculateResponse struct {
	SubjectID  string         `json:"subject_id"`
	Records    int            `json:"records"`
	Saved      bool           `json:"saved"`
	Partitions []partitionDTO `json:"partitions"`
}

func toResultDTO(r baseline.ResultRecord) resultDTO {
	return resultDTO{
		Datetime:             r.Timestamp.Format(timeLayout),
		DayType:              string(r.DayType),
		DayOfWeek:            int(r.DayOfWeek),
		IsPublicHoliday:      r.IsPublicHoliday,
		UnitNum:              r.UnitNum,
		Demand:               r.Demand,
		DRInvokedUnit:        r.InvokedUnit,
		DRInvokedDay:         r.DRInvokedDay,
		MeanDailyDemandForDR: r.MeanDailyDemandForDR,
		MeanHighXOfY:         r.MeanHighXOfY,
	}
}

func toCalculateResponse(result *application.Result, saved bool) calculateResponse {
	resp := calculateResponse{
		SubjectID:  result.SubjectID,
		Records:    len(result.Records),
		Saved:      saved,
		Partitions: make([]partitionDTO, 0, len(result.Summary.Partitions)),
	}
	for _, p := range result.Summary.Partitions {
		resp.Partitions = append(resp.Partitions, partitionDTO{
			DayType:   string(p.DayType),
			X:         p.Params.X,
			Y:         p.Params.Y,
			Records:   p.Records,
			Defined:   p.Defined,
			Undefined: p.Undefined,
			FirstAt:   formatTime(p.FirstAt),
			LastAt:    formatTime(p.LastAt),
		})
	}
	return resp
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(timeLayout)
}
