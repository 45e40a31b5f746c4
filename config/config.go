package config

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const dateLayout = "2006-01-02"

// ClickHouseConfig — настройки необязательной выгрузки готового отчёта в ClickHouse.
// Выгрузка включена, если задан Address.
type ClickHouseConfig struct {
	Address  string `yaml:"Address"`
	Username string `yaml:"Username"`
	Password string `yaml:"Password"`
	Database string `yaml:"Database"`
	Table    string `yaml:"Table"`
	Protocol string `yaml:"Protocol"`
}

// FileConfig — необязательный YAML-файл со значениями по умолчанию.
// Явно заданные флаги командной строки имеют приоритет.
type FileConfig struct {
	LogDir     string           `yaml:"LogDir"`
	LogPrefix  string           `yaml:"LogPrefix"`
	MapFile    string           `yaml:"MapFile"`
	Days       int              `yaml:"Days"`
	ClickHouse ClickHouseConfig `yaml:"ClickHouse"`
}

// Config — итоговая конфигурация прогона после слияния флагов и YAML.
// StartDate и EndDate — календарные даты (полночь UTC), сравнение событий
// идёт только по дате в смещении самого события.
type Config struct {
	User       string
	StartDate  time.Time
	EndDate    time.Time
	Output     string
	MapFile    string
	LogDir     string
	LogPrefix  string
	Verbose    bool
	ClickHouse ClickHouseConfig
}

// Parse разбирает аргументы командной строки, подмешивает значения из
// необязательного YAML-файла и проверяет согласованность дат.
// Ошибки здесь фатальны для прогона и возвращаются до какого-либо I/O по логам.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("wgsessionreport", flag.ContinueOnError)
	var (
		cfgPath   = fs.String("config", "", "путь к необязательному YAML-файлу с настройками")
		user      = fs.String("user", "all", "имя пира для отчёта или 'all' для всех")
		start     = fs.String("start", "", "начальная дата (YYYY-MM-DD), по умолчанию -days дней до конечной")
		end       = fs.String("end", "", "конечная дата (YYYY-MM-DD), по умолчанию сегодня")
		days      = fs.Int("days", 3, "сколько дней включая конечную дату, если -start не задан")
		output    = fs.String("output", "", "путь к CSV-файлу отчёта")
		mapFile   = fs.String("map-file", "/root/script/ipaddr-map.json", "путь к JSON-карте пиров")
		logDir    = fs.String("log-dir", "/var/log", "каталог с файлами логов")
		logPrefix = fs.String("log-prefix", "wireguard-connections.log", "префикс имён файлов логов")
		verbose   = fs.Bool("verbose", false, "подробный вывод (debug)")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Запоминаем, какие флаги были заданы явно: YAML не должен их перекрывать.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := &Config{
		User:      *user,
		Output:    *output,
		MapFile:   *mapFile,
		LogDir:    *logDir,
		LogPrefix: *logPrefix,
		Verbose:   *verbose,
	}

	if *cfgPath != "" {
		fc, err := LoadFile(*cfgPath)
		if err != nil {
			return nil, fmt.Errorf("чтение конфига %s: %w", *cfgPath, err)
		}
		if fc.LogDir != "" && !set["log-dir"] {
			cfg.LogDir = fc.LogDir
		}
		if fc.LogPrefix != "" && !set["log-prefix"] {
			cfg.LogPrefix = fc.LogPrefix
		}
		if fc.MapFile != "" && !set["map-file"] {
			cfg.MapFile = fc.MapFile
		}
		if fc.Days > 0 && !set["days"] {
			*days = fc.Days
		}
		cfg.ClickHouse = fc.ClickHouse
	}

	// Конечная дата по умолчанию — сегодня.
	y, m, d := time.Now().Date()
	cfg.EndDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if *end != "" {
		t, err := time.Parse(dateLayout, *end)
		if err != nil {
			return nil, fmt.Errorf("неверная конечная дата %q: %w", *end, err)
		}
		cfg.EndDate = t
	}
	// Начальная дата по умолчанию — N дней, включая конечную.
	cfg.StartDate = cfg.EndDate.AddDate(0, 0, -(*days - 1))
	if *start != "" {
		t, err := time.Parse(dateLayout, *start)
		if err != nil {
			return nil, fmt.Errorf("неверная начальная дата %q: %w", *start, err)
		}
		cfg.StartDate = t
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile загружает FileConfig из YAML-файла.
// Поддерживает файлы с BOM и табуляциями.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Удаляем UTF-8 BOM, если есть
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	// Заменяем табуляции на два пробела, чтобы YAML-парсер не жаловался
	data = bytes.ReplaceAll(data, []byte("\t"), []byte("  "))

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// Validate проверяет согласованность итоговой конфигурации.
func (c *Config) Validate() error {
	if c.StartDate.After(c.EndDate) {
		return fmt.Errorf("начальная дата %s позже конечной %s",
			c.StartDate.Format(dateLayout), c.EndDate.Format(dateLayout))
	}
	if c.User == "" {
		return fmt.Errorf("имя пира не может быть пустым, используйте 'all' для всех")
	}
	if c.Output == "" && c.ClickHouse.Address == "" {
		return fmt.Errorf("не задан -output и не настроена выгрузка в ClickHouse")
	}
	return nil
}
