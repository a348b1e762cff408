package domain

import (
	weeklyaggdomain "github.com/smallbiznis/hsekpi/internal/weeklyagg/domain"
)

// FillFrom copies aggregate values into every zero field of f. Values the
// submitter entered are kept.
func (f Figures) FillFrom(agg weeklyaggdomain.WeeklyAggregate) Figures {
	fillInt(&f.Accidents, agg.Accidents)
	fillInt(&f.AccidentsFatal, agg.AccidentsFatal)
	fillInt(&f.AccidentsSerious, agg.AccidentsSerious)
	fillInt(&f.AccidentsMinor, agg.AccidentsMinor)
	fillInt(&f.NearMisses, agg.NearMisses)
	fillInt(&f.FirstAidCases, agg.FirstAidCases)
	fillInt(&f.LostWorkdays, agg.LostWorkdays)
	fillFloat(&f.HoursWorked, agg.HoursWorked)
	fillInt(&f.Effectif, agg.Effectif)
	fillInt(&f.TrainingsConducted, agg.TrainingsConducted)
	fillFloat(&f.TrainingHours, agg.TrainingHours)
	fillInt(&f.ToolboxTalks, agg.ToolboxTalks)
	fillInt(&f.Inspections, agg.Inspections)
	fillInt(&f.Inductions, agg.Inductions)
	fillInt(&f.Deviations, agg.Deviations)
	fillInt(&f.DisciplinaryActions, agg.DisciplinaryActions)
	fillInt(&f.UnsafeActs, agg.UnsafeActs)
	fillInt(&f.UnsafeConditions, agg.UnsafeConditions)
	fillInt(&f.EmergencyDrills, agg.EmergencyDrills)
	fillInt(&f.WorkPermits, agg.WorkPermits)
	fillFloat(&f.WaterConsumption, agg.WaterConsumption)
	fillFloat(&f.ElectricityConsumption, agg.ElectricityConsumption)
	if agg.HseComplianceSamples > 0 {
		fillFloat(&f.HseComplianceRate, agg.HseComplianceRate)
	}
	if agg.MedicalComplianceSamples > 0 {
		fillFloat(&f.MedicalComplianceRate, agg.MedicalComplianceRate)
	}
	return f
}

// Validate rejects negative counters and rates outside 0..100.
func (f Figures) Validate() error {
	ints := []int64{
		f.Accidents, f.AccidentsFatal, f.AccidentsSerious, f.AccidentsMinor, f.NearMisses,
		f.FirstAidCases, f.LostWorkdays, f.Effectif, f.TrainingsConducted, f.TrainingsPlanned,
		f.EmployeesTrained, f.ToolboxTalks, f.Inspections, f.Inductions, f.Deviations,
		f.DisciplinaryActions, f.UnsafeActs, f.UnsafeConditions, f.EmergencyDrills, f.WorkPermits,
	}
	for _, v := range ints {
		if v < 0 {
			return ErrInvalidFigures
		}
	}
	for _, v := range []float64{f.HoursWorked, f.TrainingHours, f.WaterConsumption, f.ElectricityConsumption} {
		if v < 0 {
			return ErrInvalidFigures
		}
	}
	for _, v := range []float64{f.HseComplianceRate, f.MedicalComplianceRate} {
		if v < 0 || v > 100 {
			return ErrInvalidFigures
		}
	}
	return nil
}

func fillInt(dst *int64, v int64) {
	if *dst == 0 {
		*dst = v
	}
}

func fillFloat(dst *float64, v float64) {
	if *dst == 0 {
		*dst = v
	}
}
