package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubject(t *testing.T) {
	tests := []struct {
		in      string
		want    Subject
		wantErr bool
	}{
		{in: "ANGULAR", want: SubjectAngular},
		{in: "nestjs", want: SubjectNestJS},
		{in: "  RxJs ", want: SubjectRxJS},
		{in: "", wantErr: true},
		{in: "REACT", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSubject(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseSubjects(t *testing.T) {
	got, err := ParseSubjects("RXJS,ANGULAR", "rxjs")
	require.NoError(t, err)
	assert.Equal(t, []Subject{SubjectRxJS, SubjectAngular, SubjectRxJS}, got)

	got, err = ParseSubjects("NESTJS, ,")
	require.NoError(t, err)
	assert.Equal(t, []Subject{SubjectNestJS}, got)

	_, err = ParseSubjects("ANGULAR,VUE")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseSubjects()
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseSubjects(" , ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubjectSet_Check(t *testing.T) {
	var all SubjectSet
	assert.NoError(t, all.Check(AllSubjects...))
	assert.ErrorIs(t, all.Check("PHP"), ErrInvalidInput)

	only := NewSubjectSet(SubjectRxJS)
	assert.NoError(t, only.Check(SubjectRxJS))
	assert.ErrorIs(t, only.Check(SubjectRxJS, SubjectAngular), ErrInvalidInput)
}
