package yarn

import (
	"encoding/xml"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var hadoopSiteFiles = []string{"yarn-site.xml", "core-site.xml", "hdfs-site.xml"}

type hadoopConfiguration struct {
	Properties []struct {
		Name  string `xml:"name"`
		Value string `xml:"value"`
	} `xml:"property"`
}

func checkHadoopConfigDir(dir string) error {
	if dir == "" {
		return errors.New("hadoopConfigPath is required for yarn application submission")
	}
	for _, name := range hadoopSiteFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return errors.Wrapf(err, "hadoop config %s", name)
		}
	}
	return nil
}

func loadSiteProperties(path string) (map[string]string, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf hadoopConfiguration
	if err = xml.Unmarshal(b, &conf); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	props := make(map[string]string, len(conf.Properties))
	for _, p := range conf.Properties {
		props[strings.TrimSpace(p.Name)] = strings.TrimSpace(p.Value)
	}
	return props, nil
}

// resourceManagerAddress resolves the ResourceManager web address from
// yarn-site.xml, falling back to yarn.resourcemanager.hostname:8088.
func resourceManagerAddress(hadoopConfigDir string) (string, error) {
	props, err := loadSiteProperties(filepath.Join(hadoopConfigDir, "yarn-site.xml"))
	if err != nil {
		return "", err
	}
	hostname := props["yarn.resourcemanager.hostname"]
	addr := props["yarn.resourcemanager.webapp.address"]
	if addr == "" && hostname != "" {
		addr = hostname + ":8088"
	}
	addr = strings.ReplaceAll(addr, "${yarn.resourcemanager.hostname}", hostname)
	if addr == "" || strings.Contains(addr, "${") {
		return "", errors.Errorf("cannot resolve resourcemanager web address from %s", hadoopConfigDir)
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return strings.TrimSuffix(addr, "/"), nil
}
