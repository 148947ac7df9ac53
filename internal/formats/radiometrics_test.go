package formats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-data/remote-sensing-etl/internal/ingest"
)

const radiometricsHeaders = "Record,Date/Time,10,Tamb(K),Rh(%),Pres(mb)\n" +
	"Record,Date/Time,400,Tz05(K),Tz10(K)\n"

func TestReadRadiometrics(t *testing.T) {
	input := radiometricsHeaders +
		"1,05/17/16 12:00:00,101,11,Surface Met Data,\n" +
		"2,05/17/16 12:00:00,11,290.1,45.2,840.2,\n" +
		"3,05/17/16 12:05:00,11,290.3,44.8,840.1,\n" +
		"4,05/17/16 12:00:00,401,285.5,284.9,\n" +
		"5,05/17/16 12:06:00,99,processor restarted,\n"

	file, err := ReadRadiometrics(strings.NewReader(input))
	require.NoError(t, err)

	// Record 101 names the id-11 family; id 401 stays numeric.
	require.Contains(t, file.Records, "Surface Met Data")
	require.Contains(t, file.Records, "401")
	assert.Len(t, file.Records, 2)

	met := file.Records["Surface Met Data"]
	assert.Equal(t, []string{"id", "Tamb(K)", "Rh(%)", "Pres(mb)"}, met.Columns)
	require.Len(t, met.Rows, 2)
	assert.Equal(t, time.Date(2016, 5, 17, 12, 0, 0, 0, time.UTC), met.Rows[0].Time)
	tamb, _ := met.Rows[0].Cells["Tamb(K)"].Float()
	assert.Equal(t, 290.1, tamb)
	id, _ := met.Rows[1].Cells["id"].Float()
	assert.Equal(t, 11.0, id)

	tz := file.Records["401"]
	require.Len(t, tz.Rows, 1)
	assert.Equal(t, time.Date(2016, 5, 17, 12, 0, 0, 0, time.UTC), tz.Rows[0].Time)

	assert.Equal(t, []string{"processor restarted"}, file.Diagnostics)
}

func TestReadRadiometricsUnknownRecord(t *testing.T) {
	input := radiometricsHeaders +
		"1,05/17/16 12:00:00,555,1.0,2.0,\n"

	_, err := ReadRadiometrics(strings.NewReader(input))
	var headerErr *ingest.UnexpectedBlockHeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, "555", headerErr.Got)
	assert.Equal(t, []string{"10", "400"}, headerErr.Want)
}

func TestReadRadiometricsNoHeaders(t *testing.T) {
	_, err := ReadRadiometrics(strings.NewReader("1,05/17/16 12:00:00,11,290.1,\n"))
	var schemaErr *ingest.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestReadRadiometricsRowWidthMismatch(t *testing.T) {
	input := radiometricsHeaders +
		"1,05/17/16 12:00:00,11,290.1,45.2,\n"

	_, err := ReadRadiometrics(strings.NewReader(input))
	var mismatch *ingest.ColumnMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 4, mismatch.Want)
	assert.Equal(t, 3, mismatch.Got)
}

func TestReadRadiometricsBadTimestamp(t *testing.T) {
	input := radiometricsHeaders +
		"1,not-a-time,11,290.1,45.2,840.2,\n"

	_, err := ReadRadiometrics(strings.NewReader(input))
	var schemaErr *ingest.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestRadiometricsMerged(t *testing.T) {
	input := radiometricsHeaders +
		"1,05/17/16 12:00:00,11,290.1,45.2,840.2,\n" +
		"2,05/17/16 12:00:00,401,285.5,284.9,\n"

	file, err := ReadRadiometrics(strings.NewReader(input))
	require.NoError(t, err)

	merged := file.Merged()
	assert.Equal(t, "record_type", merged.Columns[0])
	assert.Contains(t, merged.Columns, "Tamb(K)")
	assert.Contains(t, merged.Columns, "Tz05(K)")
	require.Len(t, merged.Rows, 2)

	// Rows group by sorted record key: "11" before "401".
	rt, _ := merged.Rows[0].Cells["record_type"].Text()
	assert.Equal(t, "11", rt)
	rt, _ = merged.Rows[1].Cells["record_type"].Text()
	assert.Equal(t, "401", rt)

	// Columns absent from a record family fill with the missing value.
	assert.True(t, merged.Rows[0].Cells["Tz05(K)"].IsMissing())
	assert.True(t, merged.Rows[1].Cells["Tamb(K)"].IsMissing())
}
