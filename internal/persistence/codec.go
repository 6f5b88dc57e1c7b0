package persistence

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/petrijr/pager/pkg/diary"
)

// foodPayload is the gob wire form of a food entry. CreatedAt is kept as
// unix milliseconds so the payload matches what the SQL backends store.
type foodPayload struct {
	ID        int64
	Name      string
	Calories  float64
	Protein   float64
	Carbs     float64
	Fats      float64
	CreatedAt int64
}

// EncodeFood serializes f using encoding/gob.
func EncodeFood(f diary.Food) ([]byte, error) {
	p := foodPayload{
		ID:        f.ID,
		Name:      f.Name,
		Calories:  f.Calories,
		Protein:   f.Protein,
		Carbs:     f.Carbs,
		Fats:      f.Fats,
		CreatedAt: toMillis(f.CreatedAt),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeFood is the inverse of EncodeFood.
func DecodeFood(data []byte) (diary.Food, error) {
	if len(data) == 0 {
		return diary.Food{}, errors.New("gob: empty food payload")
	}
	var p foodPayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return diary.Food{}, err
	}
	return diary.Food{
		ID:        p.ID,
		Name:      p.Name,
		Calories:  p.Calories,
		Protein:   p.Protein,
		Carbs:     p.Carbs,
		Fats:      p.Fats,
		CreatedAt: fromMillis(p.CreatedAt),
	}, nil
}
