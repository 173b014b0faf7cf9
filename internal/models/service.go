package models

import (
	"fmt"
	"strconv"
)

// Price хранит цену как текст: "1000" или "от 50".
type Price string

// UnmarshalYAML принимает и число, и строку.
func (p *Price) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*p = Price(strconv.Itoa(v))
	case float64:
		*p = Price(strconv.FormatFloat(v, 'f', -1, 64))
	case string:
		*p = Price(v)
	case nil:
		*p = ""
	default:
		return fmt.Errorf("unsupported price value %v", v)
	}
	return nil
}

func (p Price) String() string {
	return string(p)
}

type Service struct {
	Name        string `yaml:"name" json:"name"`
	Price       Price  `yaml:"price" json:"price"`
	DurationMin int    `yaml:"duration_min" json:"duration_min"`
}

// Label текст кнопки выбора услуги.
func (s Service) Label() string {
	return fmt.Sprintf("%s — %s", s.Name, s.Price)
}

var DefaultServices = []Service{
	{Name: "Маникюр", Price: "1000", DurationMin: 60},
	{Name: "Маникюр с покрытием", Price: "1600", DurationMin: 90},
	{Name: "Наращивание ногтей", Price: "2500", DurationMin: 180},
	{Name: "Ремонт ногтя", Price: "от 50", DurationMin: 15},
	{Name: "Наращивание ногтя", Price: "от 100", DurationMin: 20},
	{Name: "Дизайн ногтя", Price: "от 50", DurationMin: 20},
	{Name: "Укрепление ногтей", Price: "300", DurationMin: 30},
	{Name: "Моделирование ногтей", Price: "600", DurationMin: 60},
	{Name: "Педикюр (пальчики)", Price: "1000", DurationMin: 60},
	{Name: "Педикюр (пальчики) с покрытием", Price: "1700", DurationMin: 90},
	{Name: "SMART педикюр", Price: "1700", DurationMin: 100},
	{Name: "SMART педикюр с покрытием", Price: "2000", DurationMin: 120},
}
