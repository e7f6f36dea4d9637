package imagemeta

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureDate читает дату съёмки из EXIF (DateTimeOriginal, затем DateTime)
func CaptureDate(data []byte) (time.Time, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return time.Time{}, fmt.Errorf("ошибка чтения EXIF: %w", err)
	}

	date, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("дата съёмки отсутствует в EXIF: %w", err)
	}

	return date, nil
}

// LocationLabel возвращает координаты съёмки как строку "lat,long"
func LocationLabel(data []byte) (string, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("ошибка чтения EXIF: %w", err)
	}

	lat, long, err := x.LatLong()
	if err != nil {
		return "", fmt.Errorf("координаты отсутствуют в EXIF: %w", err)
	}

	return fmt.Sprintf("%.5f,%.5f", lat, long), nil
}

// Orientation возвращает значение тега Orientation (1 если тег отсутствует)
func Orientation(data []byte) (int, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения EXIF: %w", err)
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1, nil
	}

	value, err := tag.Int(0)
	if err != nil {
		return 0, fmt.Errorf("некорректный тег ориентации: %w", err)
	}

	return value, nil
}
